package lease

import (
	"fmt"
	"strings"

	"github.com/muurk/evlease/internal/config"
)

// RetentionOption is the owner's end-of-lease choice.
type RetentionOption int

const (
	OptionUnset RetentionOption = iota
	OptionReturn
	OptionBuy
	OptionNewLease
)

func (o RetentionOption) String() string {
	switch o {
	case OptionUnset:
		return "Unset"
	case OptionReturn:
		return "Return"
	case OptionBuy:
		return "Buy"
	case OptionNewLease:
		return "New Lease"
	default:
		return fmt.Sprintf("RetentionOption(%d)", int(o))
	}
}

// ParseRetentionOption accepts "return", "buy" and "new-lease" (any case,
// spaces or dashes).
func ParseRetentionOption(s string) (RetentionOption, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-") {
	case "return":
		return OptionReturn, nil
	case "buy":
		return OptionBuy, nil
	case "new-lease", "newlease":
		return OptionNewLease, nil
	}
	return OptionUnset, fmt.Errorf("unknown retention option %q", s)
}

// LeaseRecord is the single mutable lease owned by a Controller.
type LeaseRecord struct {
	TermMonths   int
	StartDate    string // display only
	MaturityDate string // display only

	// DaysLeft is signed; negative means the term has ended.
	DaysLeft int

	AllowedMileage int
	CurrentMileage int // may exceed AllowedMileage

	IsInspectionComplete    bool
	IsEstimateConfirmed     bool
	IsScheduled             bool
	IsReturned              bool
	HasKeys                 bool
	HasPersonalItemsRemoved bool

	SelectedOption RetentionOption
	ScheduledDate  string // "" when never scheduled
}

// DefaultRecord is the lease the app starts with when nothing is configured.
func DefaultRecord() LeaseRecord {
	return LeaseRecord{
		TermMonths:     36,
		StartDate:      "Jun 15, 2021",
		MaturityDate:   "Jun 15, 2024",
		DaysLeft:       70,
		AllowedMileage: 30000,
		CurrentMileage: 24850,
	}
}

// RecordFromConfig builds the starting record from the lease settings section.
func RecordFromConfig(seed *config.LeaseSeed) LeaseRecord {
	if seed == nil {
		return DefaultRecord()
	}
	return LeaseRecord{
		TermMonths:     seed.TermMonths,
		StartDate:      seed.StartDate,
		MaturityDate:   seed.MaturityDate,
		DaysLeft:       seed.DaysLeft,
		AllowedMileage: seed.AllowedMileage,
		CurrentMileage: seed.CurrentMileage,
	}
}

// Phase is derived from the record on every call; it is never stored.
func (r LeaseRecord) Phase() Phase {
	return PhaseOf(r.DaysLeft, r.IsReturned)
}

// Phase is the stage of the lease lifecycle.
type Phase int

const (
	PreWindow Phase = iota
	ReturnWindow
	ReturnDay
	PostReturn
)

// ReturnWindowDays is how many days before maturity scheduling, offers and
// inspection unlock.
const ReturnWindowDays = 60

// PhaseOf maps (daysLeft, isReturned) to exactly one phase.
func PhaseOf(daysLeft int, isReturned bool) Phase {
	switch {
	case isReturned || daysLeft < 0:
		return PostReturn
	case daysLeft == 0:
		return ReturnDay
	case daysLeft <= ReturnWindowDays:
		return ReturnWindow
	default:
		return PreWindow
	}
}

func (p Phase) String() string {
	switch p {
	case PreWindow:
		return "PreWindow"
	case ReturnWindow:
		return "ReturnWindow"
	case ReturnDay:
		return "ReturnDay"
	case PostReturn:
		return "PostReturn"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// SubScreen is a page within lease management.
type SubScreen int

const (
	Overview SubScreen = iota
	Inspection
	Offers
	Schedule
	Billing
	BillBreakdown
)

func (s SubScreen) String() string {
	switch s {
	case Overview:
		return "Overview"
	case Inspection:
		return "Inspection"
	case Offers:
		return "Offers"
	case Schedule:
		return "Schedule"
	case Billing:
		return "Billing"
	case BillBreakdown:
		return "BillBreakdown"
	default:
		return fmt.Sprintf("SubScreen(%d)", int(s))
	}
}

// Overlay is the full-screen state, if any, that suspends navigation.
// At most one is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayReturnProcessing
	OverlayPaymentConfirming
	OverlaySurvey
)

func (o Overlay) String() string {
	switch o {
	case OverlayNone:
		return "None"
	case OverlayReturnProcessing:
		return "ReturnProcessing"
	case OverlayPaymentConfirming:
		return "PaymentConfirming"
	case OverlaySurvey:
		return "Survey"
	default:
		return fmt.Sprintf("Overlay(%d)", int(o))
	}
}

// PaymentState tracks the final bill payment. It only moves forward.
type PaymentState int

const (
	PaymentIdle PaymentState = iota
	PaymentAuthorizing
	PaymentConfirmed
	PaymentSettled
)

func (p PaymentState) String() string {
	switch p {
	case PaymentIdle:
		return "Idle"
	case PaymentAuthorizing:
		return "Authorizing"
	case PaymentConfirmed:
		return "Confirmed"
	case PaymentSettled:
		return "Settled"
	default:
		return fmt.Sprintf("PaymentState(%d)", int(p))
	}
}

// ChecklistFlag is a return-day checklist item the owner ticks directly.
type ChecklistFlag int

const (
	FlagHasKeys ChecklistFlag = iota
	FlagPersonalItemsRemoved
)

func (f ChecklistFlag) String() string {
	switch f {
	case FlagHasKeys:
		return "has_keys"
	case FlagPersonalItemsRemoved:
		return "personal_items_removed"
	default:
		return fmt.Sprintf("ChecklistFlag(%d)", int(f))
	}
}
