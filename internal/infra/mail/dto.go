package mail

import "time"

type DigestItem struct {
	ClientName         string
	Status             string
	Value              float64
	SentDate           time.Time
	LastFollowUp       *time.Time
	ExpectedReturnDate time.Time
	DaysOverdue        int
}

// FollowUpDigest é o conteúdo do email de follow-ups atrasados.
type FollowUpDigest struct {
	GeneratedAt time.Time
	Items       []DigestItem
	TotalValue  float64
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
