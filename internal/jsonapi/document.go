// Package jsonapi implements the JSON:API serialization engine: resource
// objects, relationship linkage, payload parsing and the inclusion graph.
// Nothing in this package speaks HTTP; controllers translate its typed errors
// at the boundary.
package jsonapi

import (
	"fmt"
	"strconv"

	"github.com/jobhunt-app/jobhunt/internal/resource"
)

// APIPrefix is the mount point of the resource routes.
const APIPrefix = "/api/v1"

// Entity is a single persisted record as supplied by the store: column name
// to value, including the primary key under "id".
type Entity = map[string]interface{}

// Linkage identifies a related resource without embedding its attributes.
type Linkage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// RelationshipObject carries a relationship's linkage and links. Data is a
// Linkage, a []Linkage, or nil; the shape is fixed by the declared
// cardinality, never by the fetched value.
type RelationshipObject struct {
	Data  interface{}       `json:"data"`
	Links map[string]string `json:"links,omitempty"`
}

// Resource is the wire representation of one entity.
type Resource struct {
	Type          string                         `json:"type"`
	ID            string                         `json:"id"`
	Attributes    map[string]interface{}         `json:"attributes,omitempty"`
	Links         map[string]string              `json:"links,omitempty"`
	Relationships map[string]*RelationshipObject `json:"relationships,omitempty"`
}

// Document is the top-level JSON:API envelope.
type Document struct {
	Data     interface{} `json:"data"`
	Included []*Resource `json:"included,omitempty"`
}

// ErrorObject is a single error entry in the error envelope.
type ErrorObject struct {
	Detail string `json:"detail"`
}

// ErrorDocument is the JSON:API error envelope.
type ErrorDocument struct {
	Errors []ErrorObject `json:"errors"`
}

// NewErrorDocument builds an error envelope with one detail string.
func NewErrorDocument(detail string) *ErrorDocument {
	return &ErrorDocument{Errors: []ErrorObject{{Detail: detail}}}
}

// ParentContext records the relationship path through which a resource was
// reached. It only influences context-dependent attributes and is allocated
// fresh per rendering episode, never shared across requests.
type ParentContext struct {
	Type         string
	ID           int64
	Relationship string
}

// ValidationError marks caller-fixable payload problems; controllers
// translate it to a 400.
type ValidationError struct {
	msg string
}

// Error implements the error interface.
func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// BasePath returns the collection URL for a resource type.
func BasePath(typeName string) string {
	return APIPrefix + "/" + resource.Pluralize(typeName)
}

// EntityID extracts the primary key of an entity as an int64. Drivers and
// tests hand back assorted integer widths.
func EntityID(e Entity) int64 {
	id, _ := toInt64(e["id"])
	return id
}

// EntityIDString returns the wire form of an entity's primary key.
func EntityIDString(e Entity) string {
	return strconv.FormatInt(EntityID(e), 10)
}

func toInt64(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case float64:
		return int64(t), true
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case []byte:
		n, err := strconv.ParseInt(string(t), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func asBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case int:
		return t != 0
	case float64:
		return t != 0
	default:
		return false
	}
}
