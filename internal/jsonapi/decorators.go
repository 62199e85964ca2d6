package jsonapi

import (
	"context"
	"strconv"
	"strings"

	"github.com/jobhunt-app/jobhunt/internal/coerce"
	"github.com/jobhunt-app/jobhunt/internal/resource"
)

// A decorator enriches a rendered resource with derived attributes or
// relationship linkage the base serializer cannot produce: parent-scoped
// echoes, legacy convenience fields, and linkage routed through another
// resource. Decorators are best-effort; a returned error downgrades to a
// debug log and the base resource ships without the enrichment.
type decorator func(ctx context.Context, res *Resource, entity Entity, pctx *ParentContext, s *Serializer) error

var decorators = map[string]decorator{
	"resume":          decorateResume,
	"experience":      decorateExperience,
	"education":       decorateEducation,
	"certification":   decorateCertification,
	"job-application": decorateApplication,
	"question":        decorateQuestion,
	"cover-letter":    decorateCoverLetter,
}

func decorateResume(_ context.Context, res *Resource, _ Entity, _ *ParentContext, _ *Serializer) error {
	// Convenience link to the related-summaries collection.
	res.Links["summaries"] = BasePath("resume") + "/" + res.ID + "/summaries"
	return nil
}

// decorateExperience echoes the owning resume id and flattens description
// content into lines, falling back to the legacy content column when no
// linked descriptions exist.
func decorateExperience(ctx context.Context, res *Resource, entity Entity, pctx *ParentContext, s *Serializer) error {
	res.Links["descriptions"] = BasePath("experience") + "/" + res.ID + "/descriptions"

	if err := echoResumeID(ctx, res, entity, pctx, s, true); err != nil {
		return err
	}

	_, descriptions := s.GetRelated(ctx, entity, "descriptions")
	var lines []string
	for _, d := range descriptions {
		if content, _ := d["content"].(string); content != "" {
			lines = append(lines, content)
		}
	}
	if len(lines) == 0 {
		raw, _ := entity["content"].(string)
		for _, ln := range strings.Split(raw, "\n") {
			if ln = strings.TrimSpace(ln); ln != "" {
				lines = append(lines, ln)
			}
		}
	}
	if len(lines) > 0 {
		res.Attributes["description_lines"] = lines
	}
	return nil
}

func decorateEducation(ctx context.Context, res *Resource, entity Entity, pctx *ParentContext, s *Serializer) error {
	return echoResumeID(ctx, res, entity, pctx, s, false)
}

func decorateCertification(ctx context.Context, res *Resource, entity Entity, pctx *ParentContext, s *Serializer) error {
	return echoResumeID(ctx, res, entity, pctx, s, true)
}

// echoResumeID surfaces which resume a section was reached through. Under a
// resume parent the context id wins; otherwise, when fallback is set, the
// first linked resume stands in.
func echoResumeID(ctx context.Context, res *Resource, entity Entity, pctx *ParentContext, s *Serializer, fallback bool) error {
	if pctx != nil && pctx.Type == "resume" {
		res.Attributes["resume_id"] = pctx.ID
		return nil
	}
	if !fallback {
		return nil
	}
	_, resumes := s.GetRelated(ctx, entity, "resumes")
	if len(resumes) > 0 {
		res.Attributes["resume_id"] = EntityID(resumes[0])
	}
	return nil
}

// decorateApplication flattens the status history into one attribute: each
// entry merges the join row (created_at, note) with the status it points at.
func decorateApplication(ctx context.Context, res *Resource, entity Entity, _ *ParentContext, s *Serializer) error {
	historyRel := resource.Relationship{
		Name: "statuses", TargetType: "job-application-status",
		Kind: resource.HasMany, ForeignKey: "application_id",
	}
	history, err := s.resolver.Related(ctx, historyRel, entity)
	if err != nil {
		return err
	}
	statusRel := resource.Relationship{
		Name: "status", TargetType: "status",
		Kind: resource.BelongsTo, ForeignKey: "status_id",
	}
	statuses := make([]map[string]interface{}, 0, len(history))
	for _, link := range history {
		item := map[string]interface{}{
			"created_at": coerce.ToPrimitive(link["created_at"]),
			"note":       link["note"],
		}
		if targets, err := s.resolver.Related(ctx, statusRel, link); err == nil && len(targets) > 0 {
			st := targets[0]
			item["id"] = EntityID(st)
			item["status"] = st["status"]
			item["status_type"] = st["status_type"]
		}
		statuses = append(statuses, item)
	}
	if len(statuses) > 0 {
		res.Attributes["statuses"] = statuses
	}
	return nil
}

// decorateQuestion exposes the newest answer's content as a flat attribute
// so list views need not walk the relationship.
func decorateQuestion(ctx context.Context, res *Resource, entity Entity, _ *ParentContext, s *Serializer) error {
	_, answers := s.GetRelated(ctx, entity, "answers")
	var latest Entity
	for _, a := range answers {
		if latest == nil || answerNewer(a, latest) {
			latest = a
		}
	}
	if latest != nil {
		if content, _ := latest["content"].(string); content != "" {
			res.Attributes["answer"] = content
		}
	}
	return nil
}

// answerNewer orders answers by created_at then id. Timestamps compare as
// their primitive ISO strings, which sort chronologically.
func answerNewer(a, b Entity) bool {
	at, _ := coerce.ToPrimitive(a["created_at"]).(string)
	bt, _ := coerce.ToPrimitive(b["created_at"]).(string)
	if at != bt {
		return at > bt
	}
	return EntityID(a) > EntityID(b)
}

// decorateCoverLetter adds a company relationship routed through the linked
// job post. The relationship is always present; with no reachable company
// the linkage is an explicit null.
func decorateCoverLetter(ctx context.Context, res *Resource, entity Entity, _ *ParentContext, s *Serializer) error {
	base := BasePath("cover-letter")
	links := map[string]string{
		"self": base + "/" + res.ID + "/relationships/company",
	}

	companyID, ok := toInt64(entity["company_id"])
	if !ok || companyID == 0 {
		ok = false
		jobPostRel := resource.Relationship{
			Name: "job-post", TargetType: "job-post",
			Kind: resource.BelongsTo, ForeignKey: "job_post_id",
		}
		posts, err := s.resolver.Related(ctx, jobPostRel, entity)
		if err == nil && len(posts) > 0 {
			companyID, ok = toInt64(posts[0]["company_id"])
			ok = ok && companyID != 0
		}
	}

	if res.Relationships == nil {
		res.Relationships = make(map[string]*RelationshipObject)
	}
	if !ok {
		res.Relationships["company"] = &RelationshipObject{Data: nil, Links: links}
		return nil
	}
	idStr := strconv.FormatInt(companyID, 10)
	links["related"] = BasePath("company") + "/" + idStr
	res.Relationships["company"] = &RelationshipObject{
		Data:  Linkage{Type: "company", ID: idStr},
		Links: links,
	}
	return nil
}
