package router

import "github.com/cms/backend/internal/interfaces/http/handler"

// NewContentGroup mounts the CRUD and ordering routes of every resource
// under /content/{resource}.
func NewContentGroup(ordering *handler.OrderingHandler, entities ...handler.EntityRoutes) *DomainGroup {
	group := NewDomainGroup("content", "/content")
	for _, e := range entities {
		name := e.Resource()
		group.Group(name, "/"+name).
			GET("", e.List).
			POST("", e.Create).
			GET("/order", ordering.Entries(name)).
			PATCH("/order", ordering.Reorder(name)).
			GET("/:id", e.Get).
			PUT("/:id", e.Update).
			DELETE("/:id", e.Delete).
			POST("/:id/move", ordering.Move(name))
	}
	return group
}
