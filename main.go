// ABAC Catalog Microservice
// Copyright (c) 2025 ABAC Catalog Microservice
// Licensed under the MIT License. See LICENSE file for details.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"abac-catalog-server/internal/adapters/driven/persistence/sqlite"
	"abac-catalog-server/internal/core/domain"
	"abac-catalog-server/internal/core/ports/driven"
	"abac-catalog-server/internal/core/ports/driving"
	"abac-catalog-server/internal/core/services"
)

// attributeRequest carries an attribute or rule name
type attributeRequest struct {
	Name string `json:"name"`
}

// grantRequest carries a batch grant: the value to assign and the grantee
// names (role names for user attributes, resource names for resource
// attributes)
type grantRequest struct {
	Grantees []string `json:"grantees"`
	Value    string   `json:"value"`
}

// revokeRequest carries the value from a revoke statement
type revokeRequest struct {
	Value string `json:"value"`
}

// ruleRequest carries a rule creation command: user-side and resource-side
// clause lists of attribute-name/value pairs
type ruleRequest struct {
	Name            string              `json:"name"`
	UserClauses     []domain.ClauseSpec `json:"user_clauses"`
	ResourceClauses []domain.ClauseSpec `json:"resource_clauses"`
}

// grantOutcomeResponse is the wire form of one per-grantee grant result
type grantOutcomeResponse struct {
	Grantee string `json:"grantee"`
	Granted bool   `json:"granted"`
	Error   string `json:"error,omitempty"`
}

// CatalogServer exposes the policy command layer over HTTP
type CatalogServer struct {
	commands  driving.PolicyCommands
	directory driven.SubjectDirectory
}

// NewCatalogServer wires the SQLite repositories and the command layer.
func NewCatalogServer(db *gorm.DB) *CatalogServer {
	registry := sqlite.NewAttributeRegistry(db)
	values := sqlite.NewAttributeValueRepository(db)
	rules := sqlite.NewRuleRepository(db)
	directory := sqlite.NewSubjectDirectory(db)

	return &CatalogServer{
		commands:  services.NewPolicyCommands(registry, values, rules, directory),
		directory: directory,
	}
}

// statusForError maps the domain error taxonomy to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrFeatureNotSupported):
		return http.StatusNotImplemented
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUndefinedObject), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrReservedName), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusForError(err))
}

// createAttributeHandler handles attribute creation for one namespace
func (s *CatalogServer) createAttributeHandler(ns domain.AttributeNamespace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req attributeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request format", http.StatusBadRequest)
			return
		}

		var id uint
		var err error
		if ns == domain.NamespaceUser {
			id, err = s.commands.CreateUserAttribute(req.Name)
		} else {
			id, err = s.commands.CreateResourceAttribute(req.Name)
		}
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"id":        id,
			"name":      req.Name,
			"namespace": ns,
			"message":   fmt.Sprintf("%s attribute created successfully", ns),
		})
	}
}

// dropAttributeHandler rejects attribute deletion; the operation is not
// supported in this version
func (s *CatalogServer) dropAttributeHandler(ns domain.AttributeNamespace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		var err error
		if ns == domain.NamespaceUser {
			err = s.commands.DropUserAttribute(name)
		} else {
			err = s.commands.DropResourceAttribute(name)
		}
		writeError(w, err)
	}
}

// grantAttributeHandler handles batch grants for one namespace
func (s *CatalogServer) grantAttributeHandler(ns domain.AttributeNamespace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attribute := mux.Vars(r)["name"]

		var req grantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request format", http.StatusBadRequest)
			return
		}
		if len(req.Grantees) == 0 {
			http.Error(w, "grantees are required", http.StatusBadRequest)
			return
		}

		var outcomes []domain.GrantOutcome
		var err error
		if ns == domain.NamespaceUser {
			outcomes, err = s.commands.GrantUserAttribute(attribute, req.Grantees, req.Value)
		} else {
			outcomes, err = s.commands.GrantResourceAttribute(attribute, req.Grantees, req.Value)
		}
		if err != nil {
			writeError(w, err)
			return
		}

		results := make([]grantOutcomeResponse, len(outcomes))
		granted := 0
		for i, o := range outcomes {
			results[i] = grantOutcomeResponse{Grantee: o.Grantee, Granted: o.Granted()}
			if o.Granted() {
				granted++
			} else {
				results[i].Error = o.Err.Error()
			}
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"attribute": attribute,
			"namespace": ns,
			"value":     req.Value,
			"outcomes":  results,
			"granted":   granted,
		})
	}
}

// revokeAttributeHandler rejects revocation; the operation is not supported
// in this version
func (s *CatalogServer) revokeAttributeHandler(ns domain.AttributeNamespace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attribute := mux.Vars(r)["name"]

		var req revokeRequest
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&req)
		}

		var err error
		if ns == domain.NamespaceUser {
			err = s.commands.RevokeUserAttribute(attribute, req.Value)
		} else {
			err = s.commands.RevokeResourceAttribute(attribute, req.Value)
		}
		writeError(w, err)
	}
}

// createRuleHandler handles rule creation
func (s *CatalogServer) createRuleHandler(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := s.commands.CreateRule(req.Name, req.UserClauses, req.ResourceClauses); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"name":    req.Name,
		"clauses": len(req.UserClauses) + len(req.ResourceClauses),
		"message": "ABAC rule created successfully",
	})
}

// getRuleHandler retrieves a rule with all of its clauses
func (s *CatalogServer) getRuleHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	rule, err := s.commands.GetRule(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// listRulesHandler retrieves all stored rules
func (s *CatalogServer) listRulesHandler(w http.ResponseWriter, r *http.Request) {
	rules, err := s.commands.ListRules()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rules": rules,
		"count": len(rules),
	})
}

// dropRuleHandler rejects rule deletion; the operation is not supported in
// this version
func (s *CatalogServer) dropRuleHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, s.commands.DropRule(mux.Vars(r)["name"]))
}

// createRoleHandler registers a role in the subject directory
func (s *CatalogServer) createRoleHandler(w http.ResponseWriter, r *http.Request) {
	var req attributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	id, err := s.directory.CreateRole(req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id, "name": req.Name})
}

// createResourceHandler registers a resource in the subject directory
func (s *CatalogServer) createResourceHandler(w http.ResponseWriter, r *http.Request) {
	var req attributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	id, err := s.directory.CreateResource(req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id, "name": req.Name})
}

// getRoleAttributesHandler returns all attribute values granted to a role
func (s *CatalogServer) getRoleAttributesHandler(w http.ResponseWriter, r *http.Request) {
	role := mux.Vars(r)["name"]
	attrs, err := s.commands.GetUserAttributes(role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"role":       role,
		"attributes": attrs,
		"count":      len(attrs),
	})
}

// getResourceAttributesHandler returns all attribute values granted to a
// resource
func (s *CatalogServer) getResourceAttributesHandler(w http.ResponseWriter, r *http.Request) {
	resource := mux.Vars(r)["name"]
	attrs, err := s.commands.GetResourceAttributes(resource)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"resource":   resource,
		"attributes": attrs,
		"count":      len(attrs),
	})
}

// healthHandler provides a health check endpoint
func (s *CatalogServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"service":    "abac-catalog-service",
		"database":   "sqlite",
		"version":    "1.0.0",
		"operations": []string{"create-attribute", "grant-attribute", "create-rule"},
		"deferred":   []string{"drop-attribute", "revoke-attribute", "drop-rule"},
	})
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs incoming HTTP requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s %s", r.Method, r.RequestURI, r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}

// newRouter builds the API router over the catalog server
func newRouter(s *CatalogServer) *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", s.healthHandler).Methods("GET")

	// Attribute registry endpoints (user and resource namespaces)
	api.HandleFunc("/attributes/user", s.createAttributeHandler(domain.NamespaceUser)).Methods("POST")
	api.HandleFunc("/attributes/resource", s.createAttributeHandler(domain.NamespaceResource)).Methods("POST")
	api.HandleFunc("/attributes/user/{name}", s.dropAttributeHandler(domain.NamespaceUser)).Methods("DELETE")
	api.HandleFunc("/attributes/resource/{name}", s.dropAttributeHandler(domain.NamespaceResource)).Methods("DELETE")

	// Grant and revoke endpoints
	api.HandleFunc("/attributes/user/{name}/grants", s.grantAttributeHandler(domain.NamespaceUser)).Methods("POST")
	api.HandleFunc("/attributes/resource/{name}/grants", s.grantAttributeHandler(domain.NamespaceResource)).Methods("POST")
	api.HandleFunc("/attributes/user/{name}/grants", s.revokeAttributeHandler(domain.NamespaceUser)).Methods("DELETE")
	api.HandleFunc("/attributes/resource/{name}/grants", s.revokeAttributeHandler(domain.NamespaceResource)).Methods("DELETE")

	// Rule endpoints
	api.HandleFunc("/rules", s.createRuleHandler).Methods("POST")
	api.HandleFunc("/rules", s.listRulesHandler).Methods("GET")
	api.HandleFunc("/rules/{name}", s.getRuleHandler).Methods("GET")
	api.HandleFunc("/rules/{name}", s.dropRuleHandler).Methods("DELETE")

	// Subject directory endpoints
	api.HandleFunc("/roles", s.createRoleHandler).Methods("POST")
	api.HandleFunc("/resources", s.createResourceHandler).Methods("POST")
	api.HandleFunc("/roles/{name}/attributes", s.getRoleAttributesHandler).Methods("GET")
	api.HandleFunc("/resources/{name}/attributes", s.getResourceAttributesHandler).Methods("GET")

	router.Use(corsMiddleware)
	router.Use(loggingMiddleware)

	return router
}

// main initializes and starts the ABAC catalog microservice
func main() {
	dbPath := os.Getenv("ABAC_DB_PATH")
	if dbPath == "" {
		dbPath = "abac_catalog.db"
	}

	db, err := gorm.Open(gormsqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to SQLite database: %v", err)
	}

	server := NewCatalogServer(db)
	router := newRouter(server)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	log.Printf("Starting ABAC catalog microservice on %s", addr)
	log.Printf("API Documentation:")
	log.Printf("  GET    /api/v1/health - Health check")
	log.Printf("  POST   /api/v1/attributes/user - Create user attribute")
	log.Printf("  POST   /api/v1/attributes/resource - Create resource attribute")
	log.Printf("  DELETE /api/v1/attributes/{user|resource}/{name} - Drop attribute (not supported)")
	log.Printf("  POST   /api/v1/attributes/{user|resource}/{name}/grants - Grant attribute value")
	log.Printf("  DELETE /api/v1/attributes/{user|resource}/{name}/grants - Revoke attribute value (not supported)")
	log.Printf("  POST   /api/v1/rules - Create ABAC rule")
	log.Printf("  GET    /api/v1/rules - List ABAC rules")
	log.Printf("  GET    /api/v1/rules/{name} - Get ABAC rule")
	log.Printf("  DELETE /api/v1/rules/{name} - Drop ABAC rule (not supported)")
	log.Printf("  POST   /api/v1/roles - Register role")
	log.Printf("  POST   /api/v1/resources - Register resource")
	log.Printf("  GET    /api/v1/roles/{name}/attributes - Get role attribute values")
	log.Printf("  GET    /api/v1/resources/{name}/attributes - Get resource attribute values")

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
