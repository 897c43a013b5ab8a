// Package flow describes the conversation as an explicit transition table.
// A rule maps the current step and an inbound event to an action and the
// step that follows when the action succeeds. The table knows nothing about
// the transport, so it can be tested on its own.
package flow

import "strings"

type Step string

const (
	StepNone                 Step = ""
	StepAwaitingSubscription Step = "awaiting_subscription"
	StepAwaitingPhone        Step = "awaiting_phone"
	StepAwaitingName         Step = "awaiting_name"
	StepAwaitingAge          Step = "awaiting_age"
	StepAwaitingRegion       Step = "awaiting_region"
	StepAwaitingHeight       Step = "awaiting_height"
	StepAwaitingWeight       Step = "awaiting_weight"
	StepCourseSelection      Step = "course_selection"
	StepAwaitingReceipt      Step = "awaiting_receipt"
	StepPendingApproval      Step = "pending_approval"

	StepAdminAwaitingUserID    Step = "admin_awaiting_user_id"
	StepAdminAwaitingMessage   Step = "admin_awaiting_message"
	StepAdminAwaitingBroadcast Step = "admin_awaiting_broadcast"
)

// Input is the shape of an inbound update.
type Input int

const (
	InputText Input = iota + 1
	InputContact
	InputPhoto
	InputDocument
	InputVideo
	InputCallback
	InputCommand
)

func (i Input) String() string {
	switch i {
	case InputText:
		return "text"
	case InputContact:
		return "contact"
	case InputPhoto:
		return "photo"
	case InputDocument:
		return "document"
	case InputVideo:
		return "video"
	case InputCallback:
		return "callback"
	case InputCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Event is the transport-free view of an update.
type Event struct {
	Input   Input
	Command string // without the leading slash
	Data    string // callback data
}

type Action string

const (
	ActionStart             Action = "start"
	ActionCancel            Action = "cancel"
	ActionAdminPanel        Action = "admin_panel"
	ActionCheckSubscription Action = "check_subscription"
	ActionRestart           Action = "restart"

	ActionPhone  Action = "phone"
	ActionName   Action = "name"
	ActionAge    Action = "age"
	ActionRegion Action = "region"
	ActionHeight Action = "height"
	ActionWeight Action = "weight"

	ActionShowCourse     Action = "show_course"
	ActionBackToCourses  Action = "back_to_courses"
	ActionPay            Action = "pay"
	ActionCopyCard       Action = "copy_card"
	ActionSendReceipt    Action = "send_receipt"
	ActionReceipt        Action = "receipt"
	ActionPendingPayment Action = "pending_payment"

	ActionApprove      Action = "approve"
	ActionRejectMenu   Action = "reject_menu"
	ActionRejectReason Action = "reject_reason"
	ActionReinvite     Action = "reinvite"

	ActionAdminStats         Action = "admin_stats"
	ActionAdminUsers         Action = "admin_users"
	ActionAdminPayments      Action = "admin_payments"
	ActionAdminExport        Action = "admin_export"
	ActionAdminMessage       Action = "admin_message"
	ActionAdminBroadcast     Action = "admin_broadcast"
	ActionAdminTargetUser    Action = "admin_target_user"
	ActionAdminSendMessage   Action = "admin_send_message"
	ActionAdminSendBroadcast Action = "admin_send_broadcast"

	ActionUnknown      Action = "unknown"
	ActionInvalidInput Action = "invalid_input"
)

// Transition says what happens to the state after a successful action.
type Transition int

const (
	// Stay leaves the state untouched.
	Stay Transition = iota
	// Advance stores the collected data under Next.
	Advance
	// Clear drops the state.
	Clear
	// Handler means the action manages the state itself.
	Handler
)

// Outcome is reported by an action.
type Outcome int

const (
	// Rejected keeps the current step; the action has already reprompted.
	Rejected Outcome = iota
	// Done applies the rule transition.
	Done
	// Abort clears the state regardless of the rule.
	Abort
)

// Callback prefixes and exact callback values.
const (
	PrefixRegion       = "region:"
	PrefixCourse       = "course:"
	PrefixPay          = "pay:"
	PrefixCopyCard     = "copy_card:"
	PrefixSendReceipt  = "send_receipt:"
	PrefixApprove      = "approve:"
	PrefixReject       = "reject:"
	PrefixRejectReason = "reject_reason:"
	PrefixReinvite     = "reinvite:"

	CallbackCheckSubscription = "check_subscription"
	CallbackRestart           = "restart"
	CallbackBackToCourses     = "back_to_courses"
	CallbackAdminStats        = "admin:stats"
	CallbackAdminUsers        = "admin:users"
	CallbackAdminPayments     = "admin:payments"
	CallbackAdminExport       = "admin:export"
	CallbackAdminMessage      = "admin:message"
	CallbackAdminBroadcast    = "admin:broadcast"

	CommandStart  = "start"
	CommandCancel = "cancel"
	CommandAdmin  = "admin"
)

type Rule struct {
	Step    Step
	Steps   []Step // the rule also applies in these steps
	AnyStep bool
	Inputs  []Input
	Command string
	Prefix  string
	Exact   string

	Action     Action
	Transition Transition
	Next       Step
	AdminOnly  bool
}

// Matches reports whether the rule applies to ev in step.
func (r Rule) Matches(step Step, ev Event) bool {
	if !r.AnyStep && !r.inStep(step) {
		return false
	}
	if !r.acceptsInput(ev.Input) {
		return false
	}

	switch ev.Input {
	case InputCommand:
		return r.Command != "" && r.Command == ev.Command
	case InputCallback:
		if r.Exact != "" {
			return ev.Data == r.Exact
		}
		if r.Prefix != "" {
			return strings.HasPrefix(ev.Data, r.Prefix)
		}
		return false
	default:
		return true
	}
}

func (r Rule) inStep(step Step) bool {
	if r.Step == step {
		return true
	}
	for _, s := range r.Steps {
		if s == step {
			return true
		}
	}
	return false
}

func (r Rule) acceptsInput(in Input) bool {
	for _, accepted := range r.Inputs {
		if accepted == in {
			return true
		}
	}
	return false
}

var (
	text     = []Input{InputText}
	callback = []Input{InputCallback}
	command  = []Input{InputCommand}
	content  = []Input{InputText, InputPhoto, InputVideo}
)

// rules is ordered: commands, then step-bound rules, then callbacks that
// work from any step. The first match wins.
var rules = []Rule{
	{AnyStep: true, Inputs: command, Command: CommandStart, Action: ActionStart, Transition: Handler},
	{AnyStep: true, Inputs: command, Command: CommandCancel, Action: ActionCancel, Transition: Clear},
	{AnyStep: true, Inputs: command, Command: CommandAdmin, Action: ActionAdminPanel, Transition: Clear, AdminOnly: true},

	// registration
	{Step: StepAwaitingPhone, Inputs: []Input{InputContact, InputText}, Action: ActionPhone, Transition: Advance, Next: StepAwaitingName},
	{Step: StepAwaitingName, Inputs: text, Action: ActionName, Transition: Advance, Next: StepAwaitingAge},
	{Step: StepAwaitingAge, Inputs: text, Action: ActionAge, Transition: Advance, Next: StepAwaitingRegion},
	{Step: StepAwaitingRegion, Inputs: callback, Prefix: PrefixRegion, Action: ActionRegion, Transition: Advance, Next: StepAwaitingHeight},
	{Step: StepAwaitingHeight, Inputs: text, Action: ActionHeight, Transition: Advance, Next: StepAwaitingWeight},
	{Step: StepAwaitingWeight, Inputs: text, Action: ActionWeight, Transition: Advance, Next: StepCourseSelection},

	// courses and payment
	{Step: StepCourseSelection, Inputs: callback, Prefix: PrefixCourse, Action: ActionShowCourse, Transition: Stay},
	{Step: StepAwaitingReceipt, Inputs: []Input{InputPhoto, InputDocument}, Action: ActionReceipt, Transition: Advance, Next: StepPendingApproval},
	{Step: StepPendingApproval, Inputs: []Input{InputText, InputPhoto, InputDocument}, Action: ActionPendingPayment, Transition: Stay},

	// admin input steps
	{Step: StepAdminAwaitingUserID, Inputs: text, Action: ActionAdminTargetUser, Transition: Advance, Next: StepAdminAwaitingMessage, AdminOnly: true},
	{Step: StepAdminAwaitingMessage, Inputs: content, Action: ActionAdminSendMessage, Transition: Clear, AdminOnly: true},
	{Step: StepAdminAwaitingBroadcast, Inputs: content, Action: ActionAdminSendBroadcast, Transition: Clear, AdminOnly: true},

	// funnel buttons resolve only in the steps that show them
	{Step: StepAwaitingSubscription, Steps: []Step{StepNone}, Inputs: callback, Exact: CallbackCheckSubscription, Action: ActionCheckSubscription, Transition: Handler},
	{Step: StepCourseSelection, Steps: []Step{StepAwaitingReceipt}, Inputs: callback, Exact: CallbackBackToCourses, Action: ActionBackToCourses, Transition: Advance, Next: StepCourseSelection},
	{Step: StepCourseSelection, Inputs: callback, Prefix: PrefixPay, Action: ActionPay, Transition: Stay},
	{Step: StepCourseSelection, Steps: []Step{StepAwaitingReceipt}, Inputs: callback, Prefix: PrefixCopyCard, Action: ActionCopyCard, Transition: Stay},
	{Step: StepCourseSelection, Inputs: callback, Prefix: PrefixSendReceipt, Action: ActionSendReceipt, Transition: Advance, Next: StepAwaitingReceipt},

	// callbacks available from any step
	{AnyStep: true, Inputs: callback, Exact: CallbackRestart, Action: ActionRestart, Transition: Handler},
	{AnyStep: true, Inputs: callback, Prefix: PrefixApprove, Action: ActionApprove, Transition: Stay, AdminOnly: true},
	{AnyStep: true, Inputs: callback, Prefix: PrefixRejectReason, Action: ActionRejectReason, Transition: Stay, AdminOnly: true},
	{AnyStep: true, Inputs: callback, Prefix: PrefixReject, Action: ActionRejectMenu, Transition: Stay, AdminOnly: true},
	{AnyStep: true, Inputs: callback, Prefix: PrefixReinvite, Action: ActionReinvite, Transition: Stay, AdminOnly: true},
	{AnyStep: true, Inputs: callback, Exact: CallbackAdminStats, Action: ActionAdminStats, Transition: Stay, AdminOnly: true},
	{AnyStep: true, Inputs: callback, Exact: CallbackAdminUsers, Action: ActionAdminUsers, Transition: Stay, AdminOnly: true},
	{AnyStep: true, Inputs: callback, Exact: CallbackAdminPayments, Action: ActionAdminPayments, Transition: Stay, AdminOnly: true},
	{AnyStep: true, Inputs: callback, Exact: CallbackAdminExport, Action: ActionAdminExport, Transition: Stay, AdminOnly: true},
	{AnyStep: true, Inputs: callback, Exact: CallbackAdminMessage, Action: ActionAdminMessage, Transition: Advance, Next: StepAdminAwaitingUserID, AdminOnly: true},
	{AnyStep: true, Inputs: callback, Exact: CallbackAdminBroadcast, Action: ActionAdminBroadcast, Transition: Advance, Next: StepAdminAwaitingBroadcast, AdminOnly: true},
}

// Rules returns a copy of the table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Resolve returns the first rule matching ev in step. Without a match it
// returns an "unknown" rule when no flow is active and an "invalid input"
// rule otherwise; both keep the state.
func Resolve(step Step, ev Event) Rule {
	for _, r := range rules {
		if r.Matches(step, ev) {
			return r
		}
	}
	if step == StepNone {
		return Rule{AnyStep: true, Action: ActionUnknown, Transition: Stay}
	}
	return Rule{Step: step, Action: ActionInvalidInput, Transition: Stay}
}

// Result is the effect of an outcome on the state.
type Result struct {
	Save  bool
	Clear bool
	Next  Step
}

// Apply maps the outcome of the rule action to a state change. Next is only
// taken when the action reports Done.
func (r Rule) Apply(out Outcome) Result {
	switch out {
	case Abort:
		return Result{Clear: true}
	case Done:
		switch r.Transition {
		case Advance:
			return Result{Save: true, Next: r.Next}
		case Clear:
			return Result{Clear: true}
		}
	}
	return Result{}
}

// Payload returns the callback data after the rule prefix.
func (r Rule) Payload(data string) string {
	return strings.TrimPrefix(data, r.Prefix)
}

// IsRegistration reports whether the step belongs to profile collection.
func IsRegistration(step Step) bool {
	switch step {
	case StepAwaitingPhone, StepAwaitingName, StepAwaitingAge,
		StepAwaitingRegion, StepAwaitingHeight, StepAwaitingWeight:
		return true
	}
	return false
}
