package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

var ErrInvalidTicket = errors.New("invalid join ticket")

// DefaultTicketTTL bounds how long a quick-match ticket stays usable.
const DefaultTicketTTL = 2 * time.Minute

// TicketService signs and checks join tickets that bind a user to one match.
type TicketService struct {
	secret string
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTicketService(secret, issuer string, ttl time.Duration) *TicketService {
	if ttl <= 0 {
		ttl = DefaultTicketTTL
	}
	return &TicketService{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Enabled reports whether tickets are configured. Matches skip the ticket
// check when it is not.
func (s *TicketService) Enabled() bool {
	return s != nil && s.secret != ""
}

func (s *TicketService) GenerateTicket(userID, matchID string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("ticket service is not configured")
	}
	if userID == "" || matchID == "" {
		return "", fmt.Errorf("user and match are required")
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": userID,
		"mid": matchID,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
		"jti": uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// VerifyTicket checks the signature, expiry, issuer and that the ticket was
// issued to userID for matchID.
func (s *TicketService) VerifyTicket(ticket, userID, matchID string) error {
	if !s.Enabled() {
		return fmt.Errorf("ticket service is not configured")
	}

	token, err := jwt.Parse(ticket, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return ErrInvalidTicket
	}

	if !claims.VerifyIssuer(s.issuer, true) {
		return fmt.Errorf("%w: wrong issuer", ErrInvalidTicket)
	}
	if sub, _ := claims["sub"].(string); sub != userID {
		return fmt.Errorf("%w: issued to another user", ErrInvalidTicket)
	}
	if mid, _ := claims["mid"].(string); mid != matchID {
		return fmt.Errorf("%w: issued for another match", ErrInvalidTicket)
	}
	return nil
}
