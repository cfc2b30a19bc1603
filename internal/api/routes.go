package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)

	api.Get("/dashboard", handler.AuthRequired, handler.Dashboard)

	members := api.Group("/members", handler.AuthRequired)
	members.Get("", handler.RequireCapability(CapViewMember), handler.ListMembers)
	members.Post("", handler.RequireCapability(CapAddMember), handler.CreateMember)
	members.Post("/import", handler.RequireCapability(CapImportMembers), handler.ImportMembers)
	members.Get("/export", handler.RequireCapability(CapExportMembers), handler.ExportMembers)
	members.Get("/:id", handler.RequireCapability(CapViewMember), handler.GetMember)
	members.Put("/:id", handler.RequireCapability(CapChangeMember), handler.UpdateMember)
	members.Delete("/:id", handler.RequireCapability(CapDeleteMember), handler.DeleteMember)
	members.Get("/:id/history", handler.RequireCapability(CapViewHistory), handler.MemberHistory)

	images := api.Group("/images", handler.AuthRequired)
	images.Get("", handler.RequireCapability(CapViewImages), handler.ListImages)
	images.Post("", handler.RequireCapability(CapAddImages), handler.UploadImage)
	images.Delete("/:id", handler.RequireCapability(CapDeleteImages), handler.DeleteImage)
}
