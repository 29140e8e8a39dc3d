package models

// All lists every persisted model in dependency order. Tests feed it to AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Location{},
		&Tag{},
		&Designation{},
		&Occupation{},
		&IssueIncharge{},
		&Resolver{},
		&Complaint{},
		&ComplaintDetail{},
		&ComplaintTag{},
		&Attachment{},
		&Upvote{},
		&Notification{},
	}
}
