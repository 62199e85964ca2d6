package jsonapi

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jobhunt-app/jobhunt/internal/resource"
)

// stubResolver serves canned relationship targets keyed by relationship name
// and entity id, and canned join-row values.
type stubResolver struct {
	related map[string][]Entity     // "relName:entityID" -> targets
	joins   map[string]interface{}  // "joinTable:parentID:childID" -> value
	err     error
}

func (s *stubResolver) Related(_ context.Context, rel resource.Relationship, entity Entity) ([]Entity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.related[fmt.Sprintf("%s:%s", rel.Name, EntityIDString(entity))], nil
}

func (s *stubResolver) JoinValue(_ context.Context, ja resource.JoinAttribute, parentID, childID int64) (interface{}, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	v, ok := s.joins[fmt.Sprintf("%s:%d:%d", ja.JoinTable, parentID, childID)]
	return v, ok, nil
}

func testRegistry(t *testing.T) *resource.Registry {
	t.Helper()
	return resource.Catalog()
}

func descFor(t *testing.T, reg *resource.Registry, typeName string) *resource.Descriptor {
	t.Helper()
	d, ok := reg.Get(typeName)
	require.True(t, ok)
	return d
}

func TestToResourceAttributesAndLinks(t *testing.T) {
	reg := testRegistry(t)
	ser := NewSerializer(descFor(t, reg, "score"), reg, &stubResolver{}, zap.NewNop())

	res := ser.ToResource(context.Background(), Entity{
		"id": int64(3), "score": 87.5, "explanation": []byte("solid match"),
		"resume_id": int64(2), "job_post_id": nil, "user_id": int64(7),
	}, nil)

	assert.Equal(t, "score", res.Type)
	assert.Equal(t, "3", res.ID)
	assert.Equal(t, "/api/v1/scores/3", res.Links["self"])
	assert.Equal(t, 87.5, res.Attributes["score"])
	assert.Equal(t, "solid match", res.Attributes["explanation"])
}

func TestToResourceToOneLinkage(t *testing.T) {
	reg := testRegistry(t)
	ser := NewSerializer(descFor(t, reg, "score"), reg, &stubResolver{}, zap.NewNop())

	res := ser.ToResource(context.Background(), Entity{
		"id": int64(3), "score": 80.0, "explanation": "",
		"resume_id": int64(2), "job_post_id": nil, "user_id": int64(7),
	}, nil)

	user := res.Relationships["user"]
	require.NotNil(t, user)
	assert.Equal(t, Linkage{Type: "user", ID: "7"}, user.Data)
	assert.Equal(t, "/api/v1/scores/3/relationships/user", user.Links["self"])
	assert.Equal(t, "/api/v1/users/7", user.Links["related"])

	// Absent FK renders an explicit null, and no related link.
	jobPost := res.Relationships["job-post"]
	require.NotNil(t, jobPost)
	assert.Nil(t, jobPost.Data)
	assert.NotContains(t, jobPost.Links, "related")
}

func TestToResourceToManyLinkageOrder(t *testing.T) {
	reg := testRegistry(t)
	resolver := &stubResolver{related: map[string][]Entity{
		"answers:5": {
			{"id": int64(30)},
			{"id": int64(10)},
			{"id": int64(20)},
		},
	}}
	ser := NewSerializer(descFor(t, reg, "question"), reg, resolver, zap.NewNop())

	res := ser.ToResource(context.Background(), Entity{"id": int64(5)}, nil)

	answers := res.Relationships["answers"]
	require.NotNil(t, answers)
	// Linkage preserves the access layer's order.
	assert.Equal(t, []Linkage{
		{Type: "answer", ID: "30"},
		{Type: "answer", ID: "10"},
		{Type: "answer", ID: "20"},
	}, answers.Data)
}

func TestJoinAttributeUnderParentContext(t *testing.T) {
	reg := testRegistry(t)
	resolver := &stubResolver{joins: map[string]interface{}{
		"resume_skill:1:9": int64(1),
	}}
	ser := NewSerializer(descFor(t, reg, "skill"), reg, resolver, zap.NewNop())
	entity := Entity{"id": int64(9), "text": "Go", "skill_type": "language"}

	pctx := &ParentContext{Type: "resume", ID: 1, Relationship: "skills"}
	res := ser.ToResource(context.Background(), entity, pctx)
	assert.Equal(t, true, res.Attributes["active"])

	// Without a parent context the join attribute is absent.
	res = ser.ToResource(context.Background(), entity, nil)
	assert.NotContains(t, res.Attributes, "active")

	// No join row at all: absent, not defaulted.
	pctx = &ParentContext{Type: "resume", ID: 2, Relationship: "skills"}
	res = ser.ToResource(context.Background(), entity, pctx)
	assert.NotContains(t, res.Attributes, "active")
}

func TestDescriptionOrderFromJoinRow(t *testing.T) {
	reg := testRegistry(t)
	resolver := &stubResolver{joins: map[string]interface{}{
		"experience_description:4:11": int64(2),
	}}
	ser := NewSerializer(descFor(t, reg, "description"), reg, resolver, zap.NewNop())

	pctx := &ParentContext{Type: "experience", ID: 4, Relationship: "descriptions"}
	res := ser.ToResource(context.Background(), Entity{"id": int64(11), "content": "Shipped things"}, pctx)
	assert.Equal(t, int64(2), res.Attributes["order"])
}

func TestExperienceDecorator(t *testing.T) {
	reg := testRegistry(t)
	resolver := &stubResolver{related: map[string][]Entity{
		"descriptions:4": {
			{"id": int64(11), "content": "Led migration"},
			{"id": int64(12), "content": "Cut latency"},
		},
	}}
	ser := NewSerializer(descFor(t, reg, "experience"), reg, resolver, zap.NewNop())

	pctx := &ParentContext{Type: "resume", ID: 1, Relationship: "experiences"}
	res := ser.ToResource(context.Background(), Entity{"id": int64(4), "title": "Engineer"}, pctx)

	assert.Equal(t, int64(1), res.Attributes["resume_id"])
	assert.Equal(t, []string{"Led migration", "Cut latency"}, res.Attributes["description_lines"])
	assert.Equal(t, "/api/v1/experiences/4/descriptions", res.Links["descriptions"])
}

func TestExperienceDecoratorContentFallback(t *testing.T) {
	reg := testRegistry(t)
	ser := NewSerializer(descFor(t, reg, "experience"), reg, &stubResolver{}, zap.NewNop())

	res := ser.ToResource(context.Background(), Entity{
		"id": int64(4), "content": "first line\n\n  second line  \n",
	}, nil)

	assert.Equal(t, []string{"first line", "second line"}, res.Attributes["description_lines"])
	assert.NotContains(t, res.Attributes, "resume_id")
}

func TestQuestionDecoratorLatestAnswer(t *testing.T) {
	reg := testRegistry(t)
	resolver := &stubResolver{related: map[string][]Entity{
		"answers:5": {
			{"id": int64(1), "content": "older", "created_at": "2024-01-01T00:00:00"},
			{"id": int64(2), "content": "newer", "created_at": "2024-06-01T00:00:00"},
		},
	}}
	ser := NewSerializer(descFor(t, reg, "question"), reg, resolver, zap.NewNop())

	res := ser.ToResource(context.Background(), Entity{"id": int64(5), "content": "Why us?"}, nil)
	assert.Equal(t, "newer", res.Attributes["answer"])
}

func TestCoverLetterCompanyViaJobPost(t *testing.T) {
	reg := testRegistry(t)
	resolver := &stubResolver{related: map[string][]Entity{
		"job-post:8": {{"id": int64(40), "company_id": int64(6)}},
	}}
	ser := NewSerializer(descFor(t, reg, "cover-letter"), reg, resolver, zap.NewNop())

	res := ser.ToResource(context.Background(), Entity{
		"id": int64(8), "content": "Dear team", "job_post_id": int64(40),
	}, nil)

	company := res.Relationships["company"]
	require.NotNil(t, company)
	assert.Equal(t, Linkage{Type: "company", ID: "6"}, company.Data)
	assert.Equal(t, "/api/v1/companies/6", company.Links["related"])
}

func TestCoverLetterCompanyNullWithoutJobPost(t *testing.T) {
	reg := testRegistry(t)
	ser := NewSerializer(descFor(t, reg, "cover-letter"), reg, &stubResolver{}, zap.NewNop())

	res := ser.ToResource(context.Background(), Entity{"id": int64(8), "content": "Dear team"}, nil)

	company := res.Relationships["company"]
	require.NotNil(t, company)
	assert.Nil(t, company.Data)
}

func TestResolverFailureDegradesToEmptyLinkage(t *testing.T) {
	reg := testRegistry(t)
	resolver := &stubResolver{err: fmt.Errorf("connection reset")}
	ser := NewSerializer(descFor(t, reg, "question"), reg, resolver, zap.NewNop())

	res := ser.ToResource(context.Background(), Entity{"id": int64(5)}, nil)

	answers := res.Relationships["answers"]
	require.NotNil(t, answers)
	assert.Equal(t, []Linkage{}, answers.Data)
}
