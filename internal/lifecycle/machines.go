package lifecycle

import "atelier/internal/models"

var Instructor = NewMachine("instructor_assignment",
	[]models.InstructorState{
		models.InstructorTBA, models.InstructorProposed, models.InstructorAssigned,
		models.InstructorConfirmed, models.InstructorReassigned,
	},
	map[models.InstructorState][]models.InstructorState{
		models.InstructorTBA:        {models.InstructorProposed, models.InstructorAssigned},
		models.InstructorProposed:   {models.InstructorAssigned, models.InstructorTBA},
		models.InstructorAssigned:   {models.InstructorConfirmed, models.InstructorReassigned, models.InstructorTBA},
		models.InstructorConfirmed:  {models.InstructorReassigned, models.InstructorTBA},
		models.InstructorReassigned: {models.InstructorConfirmed, models.InstructorTBA},
	},
)

// Registration never demotes a seat to the waitlist. CANCELLED rows are
// reused by re-registration, so it is not terminal.
var Registration = NewMachine("registration",
	[]models.RegistrationStatus{
		models.RegistrationRegistered, models.RegistrationWaitlisted,
		models.RegistrationCheckedIn, models.RegistrationCancelled,
	},
	map[models.RegistrationStatus][]models.RegistrationStatus{
		models.RegistrationRegistered: {models.RegistrationCheckedIn, models.RegistrationCancelled},
		models.RegistrationWaitlisted: {models.RegistrationRegistered, models.RegistrationCheckedIn, models.RegistrationCancelled},
		models.RegistrationCheckedIn:  {models.RegistrationCancelled},
		models.RegistrationCancelled:  {models.RegistrationRegistered, models.RegistrationWaitlisted},
	},
)

var Deal = NewMachine("deal",
	[]models.DealStatus{
		models.DealQueued, models.DealAssigned, models.DealMaestroApproved, models.DealPaid,
		models.DealInProgress, models.DealDelivered, models.DealClosed, models.DealRefunded,
	},
	map[models.DealStatus][]models.DealStatus{
		models.DealQueued:          {models.DealAssigned},
		models.DealAssigned:        {models.DealMaestroApproved, models.DealQueued},
		models.DealMaestroApproved: {models.DealPaid, models.DealAssigned},
		models.DealPaid:            {models.DealInProgress, models.DealRefunded},
		models.DealInProgress:      {models.DealDelivered, models.DealRefunded},
		models.DealDelivered:       {models.DealClosed, models.DealRefunded},
	},
)

var LedgerEntry = NewMachine("ledger_entry",
	[]models.LedgerEntryStatus{models.LedgerEarned, models.LedgerApproved, models.LedgerPaid, models.LedgerVoid},
	map[models.LedgerEntryStatus][]models.LedgerEntryStatus{
		models.LedgerEarned:   {models.LedgerApproved, models.LedgerVoid},
		models.LedgerApproved: {models.LedgerPaid, models.LedgerVoid},
	},
)

var Proposal = NewMachine("proposal",
	[]models.ProposalStatus{
		models.ProposalDraft, models.ProposalSent, models.ProposalAccepted,
		models.ProposalDeclined, models.ProposalExpired,
	},
	map[models.ProposalStatus][]models.ProposalStatus{
		models.ProposalDraft: {models.ProposalSent},
		models.ProposalSent:  {models.ProposalAccepted, models.ProposalDeclined, models.ProposalExpired},
	},
)

// Invoice allows VOID from every non-terminal state.
var Invoice = NewMachine("invoice",
	[]models.InvoiceStatus{
		models.InvoiceDraft, models.InvoiceIssued, models.InvoicePartiallyPaid,
		models.InvoicePaid, models.InvoiceVoid,
	},
	map[models.InvoiceStatus][]models.InvoiceStatus{
		models.InvoiceDraft:         {models.InvoiceIssued, models.InvoiceVoid},
		models.InvoiceIssued:        {models.InvoicePartiallyPaid, models.InvoicePaid, models.InvoiceVoid},
		models.InvoicePartiallyPaid: {models.InvoicePaid, models.InvoiceVoid},
	},
)

var FollowUp = NewMachine("follow_up",
	[]models.FollowUpStatus{models.FollowUpOpen, models.FollowUpInProgress, models.FollowUpBlocked, models.FollowUpDone},
	map[models.FollowUpStatus][]models.FollowUpStatus{
		models.FollowUpOpen:       {models.FollowUpInProgress, models.FollowUpBlocked, models.FollowUpDone},
		models.FollowUpInProgress: {models.FollowUpOpen, models.FollowUpBlocked, models.FollowUpDone},
		models.FollowUpBlocked:    {models.FollowUpOpen, models.FollowUpInProgress, models.FollowUpDone},
	},
)

var UserStatus = NewMachine("user_status",
	[]models.UserStatus{models.UserStatusPending, models.UserStatusActive, models.UserStatusDisabled},
	map[models.UserStatus][]models.UserStatus{
		models.UserStatusPending:  {models.UserStatusActive, models.UserStatusDisabled},
		models.UserStatusActive:   {models.UserStatusDisabled},
		models.UserStatusDisabled: {models.UserStatusActive},
	},
)

// Event guards publishing. Cancellation bypasses it.
var Event = NewMachine("event",
	[]models.EventStatus{models.EventStatusDraft, models.EventStatusPublished, models.EventStatusCancelled},
	map[models.EventStatus][]models.EventStatus{
		models.EventStatusDraft:     {models.EventStatusPublished, models.EventStatusCancelled},
		models.EventStatusPublished: {models.EventStatusCancelled},
	},
)
