package handler

import (
	"github.com/cms/backend/internal/domain/content"
	"github.com/gin-gonic/gin"
)

// Resource names used in URLs and in the ordering service registry.
const (
	ResourceFriendLinks     = "friend-links"
	ResourceCorporateHonors = "corporate-honors"
	ResourceProductPages    = "product-pages"
	ResourceSolutionPages   = "solution-pages"
)

// PageResource returns the resource name of a page kind.
func PageResource(kind content.PageKind) string {
	if kind == content.PageKindSolution {
		return ResourceSolutionPages
	}
	return ResourceProductPages
}

// EntityRoutes is implemented by the CRUD handler of each resource.
type EntityRoutes interface {
	Resource() string
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

var (
	_ EntityRoutes = (*FriendLinkHandler)(nil)
	_ EntityRoutes = (*CorporateHonorHandler)(nil)
	_ EntityRoutes = (*PageHandler)(nil)
)
