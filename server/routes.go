package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

func newRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	v1 := router.PathPrefix("/v1").Subrouter()
	v1.Use(initialContextMiddleware)

	v1.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	v1.HandleFunc("/jwks", getJWKS).Methods(http.MethodGet)
	v1.HandleFunc("/signup", signUp).Methods(http.MethodPost)
	v1.HandleFunc("/login", logIn).Methods(http.MethodPost)
	v1.HandleFunc("/password-reset", requestPasswordReset).Methods(http.MethodPost)

	users := v1.PathPrefix("/users/{uid}").Subrouter()
	users.Use(protectedRouteMiddleware)

	users.HandleFunc("/profile", findUserProfile).Methods(http.MethodGet)
	users.HandleFunc("/profile", updateUserProfile).Methods(http.MethodPut)
	users.HandleFunc("/profile/photo", uploadProfilePhoto).Methods(http.MethodPost)
	users.HandleFunc("/contacts", listContacts).Methods(http.MethodGet)
	users.HandleFunc("/contacts", createContact).Methods(http.MethodPost)
	users.HandleFunc("/contacts/{id}", updateContact).Methods(http.MethodPut)
	users.HandleFunc("/contacts/{id}", deleteContact).Methods(http.MethodDelete)
	users.HandleFunc("/sos", sosAlert).Methods(http.MethodPost)

	return router
}
