// internal/app/features/login/codes.go
package login

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.uber.org/zap"
)

// CodeSender delivers a password-reset code to its owner.
type CodeSender interface {
	SendResetCode(ctx context.Context, u models.User, code string) error
}

// LogSender writes the code to the log. Development only.
type LogSender struct {
	Log *zap.Logger
}

func (s LogSender) SendResetCode(_ context.Context, u models.User, code string) error {
	if s.Log != nil {
		s.Log.Info("password reset code",
			zap.String("user_id", u.ID.Hex()),
			zap.String("email", u.Email),
			zap.String("code", code))
	}
	return nil
}

// DiscardSender drops codes. Used in production until a delivery channel exists.
type DiscardSender struct{}

func (DiscardSender) SendResetCode(context.Context, models.User, string) error { return nil }

var codeMax = big.NewInt(1_000_000)

// newResetCode returns a uniformly random 6-digit code.
func newResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeMax)
	if err != nil {
		return "", fmt.Errorf("reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
