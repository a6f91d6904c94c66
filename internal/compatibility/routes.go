package compatibility

import (
	"github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, handler *Handler) {
	api := router.PathPrefix("/api/v1/compatibility").Subrouter()

	api.HandleFunc("/batch", handler.ApproximateBatch).Methods("POST")
	api.HandleFunc("/stats", handler.GetStats).Methods("GET")
	api.HandleFunc("/stats/reset", handler.ResetStats).Methods("POST")
	api.HandleFunc("/{user1Id}/{user2Id}", handler.GetCompatibility).Methods("GET")
}
