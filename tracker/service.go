package tracker

import "issue-tracker/orm"

// Service implements the membership and work-item operations. Every
// operation takes the acting user explicitly; there is no ambient request
// state.
type Service struct {
	db orm.DB
}

func NewService(db orm.DB) *Service {
	return &Service{db: db}
}
