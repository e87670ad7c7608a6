// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/foodgestor/internal/app/store/audit"
	"github.com/dalemusser/foodgestor/internal/app/system/paging"
)

// listItem is one audit event as the API shows it. User IDs are resolved
// to usernames where the user still exists.
type listItem struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"event_type"`
	ActorName     string            `json:"actor,omitempty"`
	TargetName    string            `json:"user,omitempty"`
	IP            string            `json:"ip"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

type listResponse struct {
	Items  []listItem    `json:"items"`
	Paging paging.Result `json:"paging"`
}

type categoryOption struct {
	Value      string   `json:"value"`
	Label      string   `json:"label"`
	EventTypes []string `json:"event_types"`
}

func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication", EventTypes: eventTypesForCategory(audit.CategoryAuth)},
		{Value: audit.CategoryAdmin, Label: "Administration", EventTypes: eventTypesForCategory(audit.CategoryAdmin)},
		{Value: audit.CategoryCash, Label: "Cash", EventTypes: eventTypesForCategory(audit.CategoryCash)},
	}
}

// eventTypesForCategory returns the event types of category, or every
// event type when category is empty.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedUserDisabled,
		audit.EventLoginFailedRateLimit,
		audit.EventLogout,
		audit.EventPasswordChanged,
		audit.EventResetCodeIssued,
		audit.EventResetCodeFailed,
	}
	adminEvents := []string{
		audit.EventUserCreated,
		audit.EventUserUpdated,
		audit.EventUserDeleted,
		audit.EventRoleCreated,
		audit.EventRoleUpdated,
		audit.EventRoleDeleted,
		audit.EventRestaurantUpdated,
		audit.EventCurrencyChanged,
		audit.EventInvoiceUpdated,
		audit.EventInvoiceDeleted,
	}
	cashEvents := []string{
		audit.EventRegisterOpened,
		audit.EventRegisterClosed,
		audit.EventRegisterOpenFail,
		audit.EventInvoiceCreated,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case audit.CategoryCash:
		return cashEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents)+len(cashEvents))
		all = append(all, authEvents...)
		all = append(all, adminEvents...)
		return append(all, cashEvents...)
	default:
		return nil
	}
}
