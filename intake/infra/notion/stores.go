package notion

import (
	"context"

	"form-intake/intake/domain"
)

// Colunas do database de feedback.
const (
	FeedbackName        = "Name"
	FeedbackEmail       = "Email"
	FeedbackType        = "Type"
	FeedbackMessage     = "Message"
	FeedbackIP          = "IP Address"
	FeedbackSubmittedAt = "Submitted At"
)

// Colunas do database da lista de espera.
const (
	WaitlistName     = "Name"
	WaitlistEmail    = "Email"
	WaitlistCompany  = "Company"
	WaitlistLinkedIn = "LinkedIn"
	WaitlistReason   = "Reason"
	WaitlistSignedUp = "Signed Up"
)

type FeedbackStore struct {
	client     *Client
	databaseID string
}

func NewFeedbackStore(c *Client, databaseID string) *FeedbackStore {
	return &FeedbackStore{client: c, databaseID: databaseID}
}

func (s *FeedbackStore) SaveFeedback(ctx context.Context, f domain.Feedback) error {
	_, err := s.client.CreatePage(ctx, s.databaseID, Properties{
		FeedbackName:        Title(f.Name),
		FeedbackEmail:       Email(f.Email),
		FeedbackType:        Select(f.Type),
		FeedbackMessage:     RichText(f.Message),
		FeedbackIP:          RichText(f.ClientIP),
		FeedbackSubmittedAt: Date(f.SubmittedAt),
	})
	return err
}

// WaitlistStore é a cópia da lista de espera no Notion: recebe cada inscrição
// como página nova e é a fonte da contagem paginada.
type WaitlistStore struct {
	client     *Client
	databaseID string
}

func NewWaitlistStore(c *Client, databaseID string) *WaitlistStore {
	return &WaitlistStore{client: c, databaseID: databaseID}
}

func (s *WaitlistStore) MirrorWaitlist(ctx context.Context, e domain.WaitlistEntry) error {
	_, err := s.client.CreatePage(ctx, s.databaseID, Properties{
		WaitlistName:     Title(e.Name),
		WaitlistEmail:    Email(e.Email),
		WaitlistCompany:  RichText(e.Company),
		WaitlistLinkedIn: URL(e.LinkedIn),
		WaitlistReason:   RichText(e.Reason),
		WaitlistSignedUp: Date(e.UpdatedAt),
	})
	return err
}

func (s *WaitlistStore) WaitlistPage(ctx context.Context, cursor string, pageSize int) (domain.Page, error) {
	res, err := s.client.QueryDatabase(ctx, s.databaseID, QueryRequest{
		StartCursor: cursor,
		PageSize:    pageSize,
	})
	if err != nil {
		return domain.Page{}, err
	}

	page := domain.Page{Count: len(res.Results), HasMore: res.HasMore}
	if res.NextCursor != nil {
		page.NextCursor = *res.NextCursor
	}
	return page, nil
}
