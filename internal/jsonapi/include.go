package jsonapi

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jobhunt-app/jobhunt/internal/resource"
)

// Includer builds the compound-document included array for a set of primary
// entities. Each Includer is scoped to one request: the (type, id) registry
// that deduplicates entries lives for exactly one Build call sequence.
type Includer struct {
	registry *resource.Registry
	resolver Resolver
	logger   *zap.Logger

	seen  map[includeKey]struct{}
	items []*Resource
}

type includeKey struct {
	typeName string
	id       string
}

// NewIncluder builds an includer over the shared registry and resolver.
func NewIncluder(registry *resource.Registry, resolver Resolver, logger *zap.Logger) *Includer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Includer{
		registry: registry,
		resolver: resolver,
		logger:   logger,
		seen:     make(map[includeKey]struct{}),
	}
}

// ParseIncludeParam splits a raw include query value into distinct
// relationship names, preserving order and dropping empties.
func ParseIncludeParam(raw string) []string {
	if raw == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}

// Build walks the requested relationship names off each primary entity and
// returns the deduplicated included resources in first-seen order. Names
// that normalize to nothing the descriptor declares are skipped; a lenient
// include list never fails a request.
func (inc *Includer) Build(ctx context.Context, desc *resource.Descriptor, primaries []Entity, includeNames []string) []*Resource {
	if len(includeNames) == 0 {
		return nil
	}
	for _, entity := range primaries {
		for _, rawName := range includeNames {
			name := resource.Normalize(rawName, desc.Relationships)
			if _, ok := desc.Relationships[name]; !ok {
				continue
			}
			inc.includeRelated(ctx, desc, entity, name)
		}
	}
	return inc.items
}

// includeRelated serializes the targets of one relationship off one entity,
// then expands each newly added target's auto-include relationships one hop.
func (inc *Includer) includeRelated(ctx context.Context, desc *resource.Descriptor, entity Entity, relName string) {
	ser := NewSerializer(desc, inc.registry, inc.resolver, inc.logger)
	targetType, targets := ser.GetRelated(ctx, entity, relName)
	if targetType == "" {
		return
	}
	targetDesc, ok := inc.registry.Get(targetType)
	if !ok {
		inc.logger.Debug("include skipped for unregistered type", zap.String("type", targetType))
		return
	}

	pctx := &ParentContext{
		Type:         desc.TypeName,
		ID:           EntityID(entity),
		Relationship: relName,
	}
	targetSer := NewSerializer(targetDesc, inc.registry, inc.resolver, inc.logger)
	for _, target := range targets {
		if !inc.add(ctx, targetSer, target, pctx) {
			continue
		}
		for _, autoRel := range targetDesc.AutoInclude {
			inc.includeRelated(ctx, targetDesc, target, autoRel)
		}
	}
}

// add renders and records one resource unless its (type, id) pair is already
// present. It reports whether the resource was newly added, which gates
// auto-include expansion so shared targets are expanded once.
func (inc *Includer) add(ctx context.Context, ser *Serializer, entity Entity, pctx *ParentContext) bool {
	key := includeKey{typeName: ser.Descriptor().TypeName, id: EntityIDString(entity)}
	if _, dup := inc.seen[key]; dup {
		return false
	}
	inc.seen[key] = struct{}{}
	inc.items = append(inc.items, ser.ToResource(ctx, entity, pctx))
	return true
}
