package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(apiHandler *APIHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Post("/auth/register", apiHandler.RegisterHandler)
		r.Post("/auth/login", apiHandler.LoginHandler)
		r.Get("/auth/me", apiHandler.SessionHandler)

		r.Get("/chats", apiHandler.ListChatsHandler)
		r.Post("/chats", apiHandler.CreateChatHandler)
		r.Post("/chats/message", apiHandler.PostMessageHandler)
		r.Get("/chats/{chatID}/messages", apiHandler.ListMessagesHandler)
		r.Delete("/chats/{chatID}", apiHandler.DeleteChatHandler)

		r.Post("/messages/feedback", apiHandler.MessageFeedbackHandler)

		r.Get("/user/{userID}", apiHandler.GetUserHandler)
		r.Put("/user/{userID}", apiHandler.UpdateUserHandler)
		r.Get("/user/{userID}/settings", apiHandler.GetUserSettingsHandler)
		r.Put("/user/{userID}/settings", apiHandler.UpdateUserSettingsHandler)

		r.Get("/categories", apiHandler.ListCategoriesHandler)
		r.Post("/categories", apiHandler.CreateCategoryHandler)
		r.Put("/categories/{categoryID}", apiHandler.UpdateCategoryHandler)
		r.Delete("/categories/{categoryID}", apiHandler.DeleteCategoryHandler)

		r.Get("/models", apiHandler.ListModelsHandler)

		r.Post("/files/upload", apiHandler.UploadFilesHandler)
		r.Get("/files/{filename}", apiHandler.ServeFileHandler)

		r.Get("/data/stats", apiHandler.StatsHandler)
		r.Post("/data/clear-chats", apiHandler.ClearChatsHandler)
		r.Post("/data/clear-all", apiHandler.ClearAllHandler)
		r.Get("/data/export", apiHandler.ExportHandler)
		r.Post("/data/import", apiHandler.ImportHandler)
	})

	return r
}
