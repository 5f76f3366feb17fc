// ABAC Catalog Microservice - API Integration Tests
// Copyright (c) 2025 ABAC Catalog Microservice
// Licensed under the MIT License. See LICENSE file for details.

package main

import (
	"encoding/json"
	"net/http"
	"testing"
)

// API Integration Tests
func TestAPI_FullWorkflow(t *testing.T) {
	router := setupTestServer(t)

	t.Run("Register Roles and Resources", func(t *testing.T) {
		for _, role := range []string{"alice", "bob", "auditor"} {
			rr := doJSON(t, router, "POST", "/api/v1/roles", attributeRequest{Name: role})
			if rr.Code != http.StatusCreated {
				t.Errorf("Failed to register role %q: status %d", role, rr.Code)
			}
		}
		for _, resource := range []string{"payroll", "ledger"} {
			rr := doJSON(t, router, "POST", "/api/v1/resources", attributeRequest{Name: resource})
			if rr.Code != http.StatusCreated {
				t.Errorf("Failed to register resource %q: status %d", resource, rr.Code)
			}
		}
	})

	t.Run("Create Attributes", func(t *testing.T) {
		rr := doJSON(t, router, "POST", "/api/v1/attributes/user", attributeRequest{Name: "clearance"})
		if rr.Code != http.StatusCreated {
			t.Fatalf("Failed to create user attribute: status %d", rr.Code)
		}
		rr = doJSON(t, router, "POST", "/api/v1/attributes/user", attributeRequest{Name: "department"})
		if rr.Code != http.StatusCreated {
			t.Fatalf("Failed to create user attribute: status %d", rr.Code)
		}
		rr = doJSON(t, router, "POST", "/api/v1/attributes/resource", attributeRequest{Name: "classification"})
		if rr.Code != http.StatusCreated {
			t.Fatalf("Failed to create resource attribute: status %d", rr.Code)
		}
	})

	t.Run("Grant Attribute Values", func(t *testing.T) {
		grants := []struct {
			path     string
			grantees []string
			value    string
		}{
			{"/api/v1/attributes/user/clearance/grants", []string{"alice", "bob"}, "secret"},
			{"/api/v1/attributes/user/department/grants", []string{"alice"}, "finance"},
			{"/api/v1/attributes/resource/classification/grants", []string{"payroll"}, "restricted"},
		}
		for _, g := range grants {
			rr := doJSON(t, router, "POST", g.path, grantRequest{Grantees: g.grantees, Value: g.value})
			if rr.Code != http.StatusOK {
				t.Errorf("Grant %s failed: status %d: %s", g.path, rr.Code, rr.Body.String())
			}
		}

		// Regrant overwrites in place
		rr := doJSON(t, router, "POST", "/api/v1/attributes/user/clearance/grants",
			grantRequest{Grantees: []string{"bob"}, Value: "confidential"})
		if rr.Code != http.StatusOK {
			t.Fatalf("Regrant failed: status %d", rr.Code)
		}

		rr = doJSON(t, router, "GET", "/api/v1/roles/bob/attributes", nil)
		var response struct {
			Attributes map[string]string `json:"attributes"`
		}
		json.Unmarshal(rr.Body.Bytes(), &response)
		if response.Attributes["clearance"] != "confidential" {
			t.Errorf("Expected bob's clearance to be overwritten, got %v", response.Attributes)
		}
	})

	t.Run("Create Rules", func(t *testing.T) {
		rr := doJSON(t, router, "POST", "/api/v1/rules", map[string]interface{}{
			"name": "finance-secret",
			"user_clauses": []map[string]string{
				{"attribute": "clearance", "value": "secret"},
				{"attribute": "department", "value": "finance"},
			},
			"resource_clauses": []map[string]string{
				{"attribute": "classification", "value": "restricted"},
			},
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("Failed to create rule: status %d: %s", rr.Code, rr.Body.String())
		}

		// A clause naming an undefined attribute fails the whole rule
		rr = doJSON(t, router, "POST", "/api/v1/rules", map[string]interface{}{
			"name": "broken-rule",
			"user_clauses": []map[string]string{
				{"attribute": "clearance", "value": "secret"},
				{"attribute": "no-such-attribute", "value": "x"},
			},
		})
		if rr.Code != http.StatusNotFound {
			t.Errorf("Expected status 404 for undefined clause attribute, got %d", rr.Code)
		}
		rr = doJSON(t, router, "GET", "/api/v1/rules/broken-rule", nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("Expected no partial rule to be visible, got status %d", rr.Code)
		}

		rr = doJSON(t, router, "GET", "/api/v1/rules", nil)
		var response struct {
			Count int `json:"count"`
		}
		json.Unmarshal(rr.Body.Bytes(), &response)
		if response.Count != 1 {
			t.Errorf("Expected exactly 1 stored rule, got %d", response.Count)
		}
	})

	t.Run("End To End Scenario", func(t *testing.T) {
		// create attribute, grant it, build a rule on it, read the value back
		rr := doJSON(t, router, "POST", "/api/v1/attributes/user", attributeRequest{Name: "team"})
		if rr.Code != http.StatusCreated {
			t.Fatalf("Failed to create attribute: status %d", rr.Code)
		}
		rr = doJSON(t, router, "POST", "/api/v1/attributes/user/team/grants",
			grantRequest{Grantees: []string{"auditor"}, Value: "audit"})
		if rr.Code != http.StatusOK {
			t.Fatalf("Grant failed: status %d", rr.Code)
		}
		rr = doJSON(t, router, "POST", "/api/v1/rules", map[string]interface{}{
			"name":         "audit-rule",
			"user_clauses": []map[string]string{{"attribute": "team", "value": "audit"}},
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("Failed to create rule: status %d", rr.Code)
		}

		rr = doJSON(t, router, "GET", "/api/v1/roles/auditor/attributes", nil)
		var response struct {
			Attributes map[string]string `json:"attributes"`
		}
		json.Unmarshal(rr.Body.Bytes(), &response)
		if response.Attributes["team"] != "audit" {
			t.Errorf("Expected team=audit for auditor, got %v", response.Attributes)
		}
	})
}
