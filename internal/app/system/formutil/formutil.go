// Package formutil reads the parts of a JSON API request that do not come
// from the body: URL path parameters and query-string values.
//
// Example usage:
//
//	id, err := formutil.IDParam(r, "id")
//	if err != nil {
//		respond.StoreError(w, h.Log, "parse id", err)
//		return
//	}
//	table, _ := formutil.IntQuery(r, "table")
package formutil

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/foodgestor/internal/app/system/inputval"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDParam parses the chi path parameter name as an ObjectID. A malformed
// value is a validation error, so handlers answer 400.
func IDParam(r *http.Request, name string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, inputval.Invalid(name, "Invalid "+name+".")
	}
	return oid, nil
}

// Query returns the trimmed query-string value for key.
func Query(r *http.Request, key string) string {
	return strings.TrimSpace(query.Get(r, key))
}

// IntQuery parses an integer query value. ok is false when the key is
// absent or not a number.
func IntQuery(r *http.Request, key string) (n int, ok bool) {
	s := Query(r, key)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ObjectIDQuery parses an optional ObjectID query value. An empty value
// returns nil; a malformed one is a validation error.
func ObjectIDQuery(r *http.Request, key string) (*primitive.ObjectID, error) {
	s := Query(r, key)
	if s == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return nil, inputval.Invalid(key, "Invalid "+key+".")
	}
	return &oid, nil
}
