package jsonapi

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/jobhunt-app/jobhunt/internal/coerce"
	"github.com/jobhunt-app/jobhunt/internal/resource"
)

// Resolver is the persistence collaborator the serializer needs: fetching the
// targets of a declared relationship and looking up join-row columns for
// context-dependent attributes.
type Resolver interface {
	// Related returns the target entities of a relationship, in the order
	// the access layer yields them. Callers treat that order as
	// significant for ordered relationships.
	Related(ctx context.Context, rel resource.Relationship, entity Entity) ([]Entity, error)

	// JoinValue fetches one column of the join row linking parentID to
	// childID. The second return is false when no join row exists.
	JoinValue(ctx context.Context, ja resource.JoinAttribute, parentID, childID int64) (interface{}, bool, error)
}

// Serializer renders entities of one resource type into resource objects.
// Instances are cheap and stateless; parent context is threaded through the
// render call rather than held on the serializer, so one instance is safe for
// a whole request but a fresh ParentContext must accompany each inclusion hop.
type Serializer struct {
	desc     *resource.Descriptor
	registry *resource.Registry
	resolver Resolver
	logger   *zap.Logger
}

// NewSerializer builds a serializer for one descriptor.
func NewSerializer(desc *resource.Descriptor, registry *resource.Registry, resolver Resolver, logger *zap.Logger) *Serializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Serializer{desc: desc, registry: registry, resolver: resolver, logger: logger}
}

// Descriptor returns the descriptor this serializer renders.
func (s *Serializer) Descriptor() *resource.Descriptor { return s.desc }

// ToResource builds the resource object for one entity. pctx carries the
// relationship path the entity was reached through and may be nil for primary
// resources. Enrichment failures (join-row lookups, decorators) never abort
// the render; the affected attribute is skipped and the base resource is
// still returned.
func (s *Serializer) ToResource(ctx context.Context, entity Entity, pctx *ParentContext) *Resource {
	id := EntityIDString(entity)
	base := BasePath(s.desc.TypeName)

	res := &Resource{
		Type:       s.desc.TypeName,
		ID:         id,
		Attributes: make(map[string]interface{}, len(s.desc.Attributes)),
		Links:      map[string]string{"self": base + "/" + id},
	}
	for _, attr := range s.desc.Attributes {
		res.Attributes[attr] = coerce.ToPrimitive(entity[attr])
	}

	if len(s.desc.Relationships) > 0 {
		res.Relationships = make(map[string]*RelationshipObject, len(s.desc.Relationships))
		for name, rel := range s.desc.Relationships {
			res.Relationships[name] = s.relationshipObject(ctx, entity, base, id, name, rel)
		}
	}

	s.applyJoinAttributes(ctx, res, entity, pctx)

	if dec, ok := decorators[s.desc.TypeName]; ok {
		if err := dec(ctx, res, entity, pctx, s); err != nil {
			s.logger.Debug("resource decoration skipped",
				zap.String("type", s.desc.TypeName),
				zap.String("id", id),
				zap.Error(err))
		}
	}

	return res
}

func (s *Serializer) relationshipObject(ctx context.Context, entity Entity, base, id, name string, rel resource.Relationship) *RelationshipObject {
	links := map[string]string{
		"self": base + "/" + id + "/relationships/" + name,
	}

	if rel.ToMany() {
		data := make([]Linkage, 0)
		targets, err := s.resolver.Related(ctx, rel, entity)
		if err != nil {
			s.logger.Debug("relationship linkage degraded to empty",
				zap.String("type", s.desc.TypeName),
				zap.String("relationship", name),
				zap.Error(err))
		}
		for _, t := range targets {
			data = append(data, Linkage{Type: rel.TargetType, ID: EntityIDString(t)})
		}
		links["related"] = base + "/" + id + "/" + name
		return &RelationshipObject{Data: data, Links: links}
	}

	targetID, ok := s.toOneTargetID(ctx, rel, entity)
	if !ok {
		return &RelationshipObject{Data: nil, Links: links}
	}
	idStr := strconv.FormatInt(targetID, 10)
	links["related"] = BasePath(rel.TargetType) + "/" + idStr
	return &RelationshipObject{
		Data:  Linkage{Type: rel.TargetType, ID: idStr},
		Links: links,
	}
}

// toOneTargetID resolves the id of a to-one target. BelongsTo reads the
// foreign key straight off the entity so linkage never costs a query; HasOne
// asks the resolver.
func (s *Serializer) toOneTargetID(ctx context.Context, rel resource.Relationship, entity Entity) (int64, bool) {
	if rel.Kind == resource.BelongsTo {
		id, ok := toInt64(entity[rel.ForeignKey])
		return id, ok && id != 0
	}
	targets, err := s.resolver.Related(ctx, rel, entity)
	if err != nil || len(targets) == 0 {
		return 0, false
	}
	return EntityID(targets[0]), true
}

func (s *Serializer) applyJoinAttributes(ctx context.Context, res *Resource, entity Entity, pctx *ParentContext) {
	if pctx == nil {
		return
	}
	for _, ja := range s.desc.JoinAttributes {
		if ja.ParentType != pctx.Type {
			continue
		}
		v, found, err := s.resolver.JoinValue(ctx, ja, pctx.ID, EntityID(entity))
		if err != nil {
			s.logger.Debug("join attribute skipped",
				zap.String("type", s.desc.TypeName),
				zap.String("attribute", ja.Name),
				zap.Error(err))
			continue
		}
		if !found {
			// No join row: the attribute is omitted, not defaulted.
			continue
		}
		if ja.Bool {
			res.Attributes[ja.Name] = asBool(v)
		} else {
			res.Attributes[ja.Name] = coerce.ToPrimitive(v)
		}
	}
}

// RelationshipLinkage returns the bare linkage data for a declared
// relationship: []Linkage for to-many, Linkage or nil for to-one. The second
// return is false when the relationship is not declared.
func (s *Serializer) RelationshipLinkage(ctx context.Context, entity Entity, relName string) (interface{}, bool) {
	rel, ok := s.desc.Relationships[relName]
	if !ok {
		return nil, false
	}
	if rel.ToMany() {
		data := make([]Linkage, 0)
		targets, err := s.resolver.Related(ctx, rel, entity)
		if err != nil {
			s.logger.Debug("relationship linkage degraded to empty",
				zap.String("type", s.desc.TypeName),
				zap.String("relationship", relName),
				zap.Error(err))
		}
		for _, t := range targets {
			data = append(data, Linkage{Type: rel.TargetType, ID: EntityIDString(t)})
		}
		return data, true
	}
	targetID, found := s.toOneTargetID(ctx, rel, entity)
	if !found {
		return nil, true
	}
	return Linkage{Type: rel.TargetType, ID: strconv.FormatInt(targetID, 10)}, true
}

// GetRelated resolves a named relationship to its target type and entities.
// An unknown relationship name yields ("", nil): nothing to include, not an
// error.
func (s *Serializer) GetRelated(ctx context.Context, entity Entity, relName string) (string, []Entity) {
	rel, ok := s.desc.Relationships[relName]
	if !ok {
		return "", nil
	}
	targets, err := s.resolver.Related(ctx, rel, entity)
	if err != nil {
		s.logger.Debug("related lookup degraded to empty",
			zap.String("type", s.desc.TypeName),
			zap.String("relationship", relName),
			zap.Error(err))
		return rel.TargetType, nil
	}
	return rel.TargetType, targets
}
