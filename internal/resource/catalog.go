package resource

// Catalog builds the full descriptor set for the job-hunting schema and
// returns a populated registry. Descriptors mirror the relational model:
// resumes link to experiences, educations, certifications and skills through
// join tables; scores, summaries, cover letters and applications hang off
// resumes, job posts and users by foreign key.
func Catalog() *Registry {
	reg := NewRegistry()
	for _, d := range catalogDescriptors() {
		// Descriptors are hand-maintained; duplicate registration is a
		// programming error, not a runtime condition.
		if err := reg.Register(d); err != nil {
			panic(err)
		}
	}
	return reg
}

func catalogDescriptors() []*Descriptor {
	return []*Descriptor{
		{
			TypeName:  "user",
			TableName: "users",
			Attributes: []string{
				"username", "email", "first_name", "last_name", "phone",
			},
			Relationships: map[string]Relationship{
				"resumes":       {Name: "resumes", TargetType: "resume", Kind: HasMany, ForeignKey: "user_id"},
				"scores":        {Name: "scores", TargetType: "score", Kind: HasMany, ForeignKey: "user_id"},
				"cover-letters": {Name: "cover-letters", TargetType: "cover-letter", Kind: HasMany, ForeignKey: "user_id"},
				"applications":  {Name: "applications", TargetType: "job-application", Kind: HasMany, ForeignKey: "user_id"},
				"summaries":     {Name: "summaries", TargetType: "summary", Kind: HasMany, ForeignKey: "user_id"},
			},
			RelationshipFKs: map[string]string{},
		},
		{
			TypeName:  "resume",
			TableName: "resume",
			Attributes: []string{
				"file_path", "title", "name", "notes", "favorite", "user_id",
			},
			Relationships: map[string]Relationship{
				"user":          {Name: "user", TargetType: "user", Kind: BelongsTo, ForeignKey: "user_id"},
				"scores":        {Name: "scores", TargetType: "score", Kind: HasMany, ForeignKey: "resume_id"},
				"cover-letters": {Name: "cover-letters", TargetType: "cover-letter", Kind: HasMany, ForeignKey: "resume_id"},
				"applications":  {Name: "applications", TargetType: "job-application", Kind: HasMany, ForeignKey: "resume_id"},
				"summaries":     {Name: "summaries", TargetType: "summary", Kind: HasMany, ForeignKey: "resume_id"},
				"experiences": {
					Name: "experiences", TargetType: "experience", Kind: ManyThrough,
					JoinTable: "resume_experience", SelfKey: "resume_id", TargetKey: "experience_id",
				},
				"educations": {
					Name: "educations", TargetType: "education", Kind: ManyThrough,
					JoinTable: "resume_education", SelfKey: "resume_id", TargetKey: "education_id",
				},
				"certifications": {
					Name: "certifications", TargetType: "certification", Kind: ManyThrough,
					JoinTable: "resume_certification", SelfKey: "resume_id", TargetKey: "certification_id",
				},
				"skills": {
					Name: "skills", TargetType: "skill", Kind: ManyThrough,
					JoinTable: "resume_skill", SelfKey: "resume_id", TargetKey: "skill_id",
				},
			},
			RelationshipFKs: map[string]string{
				"user":  "user_id",
				"users": "user_id",
			},
		},
		{
			TypeName:   "score",
			TableName:  "score",
			Attributes: []string{"score", "explanation"},
			Relationships: map[string]Relationship{
				"resume":   {Name: "resume", TargetType: "resume", Kind: BelongsTo, ForeignKey: "resume_id"},
				"job-post": {Name: "job-post", TargetType: "job-post", Kind: BelongsTo, ForeignKey: "job_post_id"},
				"user":     {Name: "user", TargetType: "user", Kind: BelongsTo, ForeignKey: "user_id"},
			},
			RelationshipFKs: map[string]string{
				"resume":   "resume_id",
				"job-post": "job_post_id",
				"job_post": "job_post_id",
				"user":     "user_id",
			},
		},
		{
			TypeName:  "job-post",
			TableName: "job_post",
			Attributes: []string{
				"description", "title", "posted_date", "extraction_date", "created_at", "link",
			},
			Relationships: map[string]Relationship{
				"company":       {Name: "company", TargetType: "company", Kind: BelongsTo, ForeignKey: "company_id"},
				"scores":        {Name: "scores", TargetType: "score", Kind: HasMany, ForeignKey: "job_post_id"},
				"scrapes":       {Name: "scrapes", TargetType: "scrape", Kind: HasMany, ForeignKey: "job_post_id"},
				"cover-letters": {Name: "cover-letters", TargetType: "cover-letter", Kind: HasMany, ForeignKey: "job_post_id"},
				"applications":  {Name: "applications", TargetType: "job-application", Kind: HasMany, ForeignKey: "job_post_id"},
				"summaries":     {Name: "summaries", TargetType: "summary", Kind: HasMany, ForeignKey: "job_post_id"},
			},
			RelationshipFKs: map[string]string{
				"company":   "company_id",
				"companies": "company_id",
			},
			DateTimeAttributes: []string{"posted_date", "extraction_date"},
			ReadOnlyAttributes: []string{"created_at"},
		},
		{
			TypeName:  "scrape",
			TableName: "scrape",
			Attributes: []string{
				"url", "css_selectors", "job_content", "external_link",
				"parse_method", "scraped_at", "state", "html",
			},
			Relationships: map[string]Relationship{
				"job-post": {Name: "job-post", TargetType: "job-post", Kind: BelongsTo, ForeignKey: "job_post_id"},
				"company":  {Name: "company", TargetType: "company", Kind: BelongsTo, ForeignKey: "company_id"},
			},
			RelationshipFKs: map[string]string{
				"job-post": "job_post_id",
				"job_post": "job_post_id",
				"company":  "company_id",
			},
		},
		{
			TypeName:   "company",
			TableName:  "company",
			Attributes: []string{"name", "display_name"},
			Relationships: map[string]Relationship{
				"job-posts":    {Name: "job-posts", TargetType: "job-post", Kind: HasMany, ForeignKey: "company_id"},
				"scrapes":      {Name: "scrapes", TargetType: "scrape", Kind: HasMany, ForeignKey: "company_id"},
				"applications": {Name: "applications", TargetType: "job-application", Kind: HasMany, ForeignKey: "company_id"},
			},
			RelationshipFKs: map[string]string{},
		},
		{
			TypeName:   "cover-letter",
			TableName:  "cover_letter",
			Attributes: []string{"content", "created_at", "favorite"},
			Relationships: map[string]Relationship{
				"user":        {Name: "user", TargetType: "user", Kind: BelongsTo, ForeignKey: "user_id"},
				"resume":      {Name: "resume", TargetType: "resume", Kind: BelongsTo, ForeignKey: "resume_id"},
				"job-post":    {Name: "job-post", TargetType: "job-post", Kind: BelongsTo, ForeignKey: "job_post_id"},
				"application": {Name: "application", TargetType: "job-application", Kind: HasOne, ForeignKey: "cover_letter_id"},
			},
			RelationshipFKs: map[string]string{
				"user":     "user_id",
				"resume":   "resume_id",
				"resumes":  "resume_id",
				"job-post": "job_post_id",
				"job_post": "job_post_id",
			},
		},
		{
			TypeName:    "job-application",
			TableName:   "application",
			TypeAliases: []string{"application", "applications"},
			Attributes:  []string{"applied_at", "status", "tracking_url", "notes"},
			Relationships: map[string]Relationship{
				"user":         {Name: "user", TargetType: "user", Kind: BelongsTo, ForeignKey: "user_id"},
				"job-post":     {Name: "job-post", TargetType: "job-post", Kind: BelongsTo, ForeignKey: "job_post_id"},
				"resume":       {Name: "resume", TargetType: "resume", Kind: BelongsTo, ForeignKey: "resume_id"},
				"company":      {Name: "company", TargetType: "company", Kind: BelongsTo, ForeignKey: "company_id"},
				"cover-letter": {Name: "cover-letter", TargetType: "cover-letter", Kind: BelongsTo, ForeignKey: "cover_letter_id"},
				"questions":    {Name: "questions", TargetType: "question", Kind: HasMany, ForeignKey: "application_id"},
			},
			RelationshipFKs: map[string]string{
				"user":          "user_id",
				"users":         "user_id",
				"job-post":      "job_post_id",
				"job_post":      "job_post_id",
				"job-posts":     "job_post_id",
				"resume":        "resume_id",
				"resumes":       "resume_id",
				"company":       "company_id",
				"companies":     "company_id",
				"cover-letter":  "cover_letter_id",
				"cover_letter":  "cover_letter_id",
				"cover-letters": "cover_letter_id",
			},
			DateTimeAttributes: []string{"applied_at"},
		},
		{
			TypeName:   "summary",
			TableName:  "summary",
			Attributes: []string{"content"},
			Relationships: map[string]Relationship{
				"user":     {Name: "user", TargetType: "user", Kind: BelongsTo, ForeignKey: "user_id"},
				"job-post": {Name: "job-post", TargetType: "job-post", Kind: BelongsTo, ForeignKey: "job_post_id"},
			},
			RelationshipFKs: map[string]string{
				"user":     "user_id",
				"job-post": "job_post_id",
				"job_post": "job_post_id",
				"resume":   "resume_id",
				"resumes":  "resume_id",
			},
			JoinAttributes: []JoinAttribute{
				{
					Name: "active", ParentType: "resume", JoinTable: "resume_summary",
					ParentKey: "resume_id", ChildKey: "summary_id", Column: "active", Bool: true,
				},
			},
		},
		{
			TypeName:  "experience",
			TableName: "experience",
			Attributes: []string{
				"title", "start_date", "end_date", "location", "content",
			},
			Relationships: map[string]Relationship{
				"resumes": {
					Name: "resumes", TargetType: "resume", Kind: ManyThrough,
					JoinTable: "resume_experience", SelfKey: "experience_id", TargetKey: "resume_id",
				},
				"company": {Name: "company", TargetType: "company", Kind: BelongsTo, ForeignKey: "company_id"},
				"descriptions": {
					Name: "descriptions", TargetType: "description", Kind: ManyThrough,
					JoinTable: "experience_description", SelfKey: "experience_id", TargetKey: "description_id",
					OrderBy: "position",
				},
			},
			RelationshipFKs: map[string]string{
				"company":   "company_id",
				"companies": "company_id",
			},
			// Descriptions and company are intrinsic to displaying an
			// experience; they ride along whenever an experience is included.
			AutoInclude:    []string{"descriptions", "company"},
			DateAttributes: []string{"start_date", "end_date"},
		},
		{
			TypeName:  "education",
			TableName: "education",
			Attributes: []string{
				"degree", "issue_date", "institution", "major", "minor",
			},
			Relationships: map[string]Relationship{
				"resumes": {
					Name: "resumes", TargetType: "resume", Kind: ManyThrough,
					JoinTable: "resume_education", SelfKey: "education_id", TargetKey: "resume_id",
				},
			},
			RelationshipFKs: map[string]string{},
			DateAttributes:  []string{"issue_date"},
		},
		{
			TypeName:   "certification",
			TableName:  "certification",
			Attributes: []string{"issuer", "title", "issue_date", "content"},
			Relationships: map[string]Relationship{
				"resumes": {
					Name: "resumes", TargetType: "resume", Kind: ManyThrough,
					JoinTable: "resume_certification", SelfKey: "certification_id", TargetKey: "resume_id",
				},
			},
			RelationshipFKs: map[string]string{},
			DateAttributes:  []string{"issue_date"},
		},
		{
			TypeName:   "description",
			TableName:  "description",
			Attributes: []string{"content"},
			Relationships: map[string]Relationship{
				"experiences": {
					Name: "experiences", TargetType: "experience", Kind: ManyThrough,
					JoinTable: "experience_description", SelfKey: "description_id", TargetKey: "experience_id",
				},
			},
			RelationshipFKs: map[string]string{},
			JoinAttributes: []JoinAttribute{
				// The join column is named "position" to stay clear of the
				// SQL keyword; the wire attribute keeps the original name.
				{
					Name: "order", ParentType: "experience", JoinTable: "experience_description",
					ParentKey: "experience_id", ChildKey: "description_id", Column: "position",
				},
			},
		},
		{
			TypeName:   "skill",
			TableName:  "skill",
			Attributes: []string{"text", "skill_type"},
			Relationships: map[string]Relationship{
				"resumes": {
					Name: "resumes", TargetType: "resume", Kind: ManyThrough,
					JoinTable: "resume_skill", SelfKey: "skill_id", TargetKey: "resume_id",
				},
			},
			RelationshipFKs: map[string]string{},
			JoinAttributes: []JoinAttribute{
				{
					Name: "active", ParentType: "resume", JoinTable: "resume_skill",
					ParentKey: "resume_id", ChildKey: "skill_id", Column: "active", Bool: true,
				},
			},
		},
		{
			TypeName:        "status",
			TableName:       "status",
			Attributes:      []string{"status", "status_type"},
			Relationships:   map[string]Relationship{},
			RelationshipFKs: map[string]string{},
		},
		{
			TypeName:   "job-application-status",
			TableName:  "job_application_status",
			Attributes: []string{"created_at", "note"},
			Relationships: map[string]Relationship{
				"application": {Name: "application", TargetType: "job-application", Kind: BelongsTo, ForeignKey: "application_id"},
				"status":      {Name: "status", TargetType: "status", Kind: BelongsTo, ForeignKey: "status_id"},
			},
			RelationshipFKs: map[string]string{
				"application": "application_id",
				"status":      "status_id",
			},
		},
		{
			TypeName:   "question",
			TableName:  "question",
			Attributes: []string{"content", "created_at", "favorite"},
			Relationships: map[string]Relationship{
				"application": {Name: "application", TargetType: "job-application", Kind: BelongsTo, ForeignKey: "application_id"},
				"company":     {Name: "company", TargetType: "company", Kind: BelongsTo, ForeignKey: "company_id"},
				"user":        {Name: "user", TargetType: "user", Kind: BelongsTo, ForeignKey: "created_by_id"},
				"answers":     {Name: "answers", TargetType: "answer", Kind: HasMany, ForeignKey: "question_id"},
			},
			RelationshipFKs: map[string]string{
				"application":      "application_id",
				"job-application":  "application_id",
				"job-applications": "application_id",
				"job_application":  "application_id",
				"job_applications": "application_id",
				"company":          "company_id",
				"user":             "created_by_id",
			},
		},
		{
			TypeName:   "answer",
			TableName:  "answer",
			Attributes: []string{"content", "created_at", "favorite"},
			Relationships: map[string]Relationship{
				"question": {Name: "question", TargetType: "question", Kind: BelongsTo, ForeignKey: "question_id"},
			},
			RelationshipFKs: map[string]string{
				"question":  "question_id",
				"questions": "question_id",
			},
		},
	}
}
