package common

import (
	"reflect"

	"github.com/JeffreyRichter/enum/enum"
)

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// LogLevel orders the severities a logger or a status line can carry, from
// most to least severe. It doubles as the daemon's own "-loglevel" knob and
// as the severity half of the filter-pipeline status-line tags in StatusTag.
type LogLevel uint8

const (
	logNone LogLevel = iota
	logEmerg
	logAlert
	logCrit
	logError
	logWarn
	logNotice
	logInfo
	logDebug
	logDebug2
)

var ELogLevel = LogLevel(logNone)

func (LogLevel) None() LogLevel   { return logNone }
func (LogLevel) Emerg() LogLevel  { return logEmerg }
func (LogLevel) Alert() LogLevel  { return logAlert }
func (LogLevel) Crit() LogLevel   { return logCrit }
func (LogLevel) Error() LogLevel  { return logError }
func (LogLevel) Warn() LogLevel   { return logWarn }
func (LogLevel) Notice() LogLevel { return logNotice }
func (LogLevel) Info() LogLevel   { return logInfo }
func (LogLevel) Debug() LogLevel  { return logDebug }
func (LogLevel) Debug2() LogLevel { return logDebug2 }

func (l *LogLevel) Parse(s string) error {
	val, err := enum.ParseInt(reflect.TypeOf(l), s, true, true)
	if err == nil {
		*l = val.(LogLevel)
	}
	return err
}

func (l LogLevel) String() string {
	switch l {
	case ELogLevel.None():
		return "NONE"
	case ELogLevel.Emerg():
		return "EMERG"
	case ELogLevel.Alert():
		return "ALERT"
	case ELogLevel.Crit():
		return "CRIT"
	case ELogLevel.Error():
		return "ERROR"
	case ELogLevel.Warn():
		return "WARN"
	case ELogLevel.Notice():
		return "NOTICE"
	case ELogLevel.Info():
		return "INFO"
	case ELogLevel.Debug():
		return "DEBUG"
	case ELogLevel.Debug2():
		return "DEBUG2"
	default:
		return enum.StringInt(l, reflect.TypeOf(l))
	}
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// StatusTag is the full set of prefixes a filter or backend may write to the
// shared status pipe (spec §4.5). The first ten mirror LogLevel; the last
// four carry no severity at all and instead drive a side effect in the job
// store or destination registry.
type StatusTag uint8

const (
	tagNone StatusTag = iota
	tagEmerg
	tagAlert
	tagCrit
	tagError
	tagWarn
	tagNotice
	tagInfo
	tagDebug
	tagDebug2
	tagPage
	tagState
	tagAttr
	tagPPD
)

var EStatusTag = StatusTag(tagNone)

func (StatusTag) None() StatusTag   { return tagNone }
func (StatusTag) Emerg() StatusTag  { return tagEmerg }
func (StatusTag) Alert() StatusTag  { return tagAlert }
func (StatusTag) Crit() StatusTag   { return tagCrit }
func (StatusTag) Error() StatusTag  { return tagError }
func (StatusTag) Warn() StatusTag   { return tagWarn }
func (StatusTag) Notice() StatusTag { return tagNotice }
func (StatusTag) Info() StatusTag   { return tagInfo }
func (StatusTag) Debug() StatusTag  { return tagDebug }
func (StatusTag) Debug2() StatusTag { return tagDebug2 }
func (StatusTag) Page() StatusTag   { return tagPage }
func (StatusTag) State() StatusTag  { return tagState }
func (StatusTag) Attr() StatusTag   { return tagAttr }
func (StatusTag) PPD() StatusTag    { return tagPPD }

func (t *StatusTag) Parse(s string) error {
	val, err := enum.ParseInt(reflect.TypeOf(t), s, true, true)
	if err == nil {
		*t = val.(StatusTag)
	}
	return err
}

func (t StatusTag) String() string {
	return enum.StringInt(t, reflect.TypeOf(t))
}

// IsLogLevel reports whether the tag is one of the ten severities that map
// directly onto LogLevel, as opposed to one of the four control tags.
func (t StatusTag) IsLogLevel() bool {
	return t <= StatusTag(logDebug2)
}

// LogLevel converts a severity tag to the equivalent LogLevel. Control tags
// (Page/State/Attr/PPD) convert to Info, since they are always worth logging.
func (t StatusTag) LogLevel() LogLevel {
	if t.IsLogLevel() {
		return LogLevel(t)
	}
	return logInfo
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// JobState is the state machine of a Job, per spec §4.4.
type JobState uint8

const (
	jobPending JobState = iota
	jobHeld
	jobProcessing
	jobStopped
	jobCancelled
	jobAborted
	jobCompleted
)

var EJobState = JobState(jobPending)

func (JobState) Pending() JobState    { return jobPending }
func (JobState) Held() JobState       { return jobHeld }
func (JobState) Processing() JobState { return jobProcessing }
func (JobState) Stopped() JobState    { return jobStopped }
func (JobState) Cancelled() JobState  { return jobCancelled }
func (JobState) Aborted() JobState    { return jobAborted }
func (JobState) Completed() JobState  { return jobCompleted }

func (s *JobState) Parse(str string) error {
	val, err := enum.ParseInt(reflect.TypeOf(s), str, true, true)
	if err == nil {
		*s = val.(JobState)
	}
	return err
}

func (s JobState) String() string {
	return enum.StringInt(s, reflect.TypeOf(s))
}

// IsTerminal reports whether the job has left active scheduling (spec §3,
// Job invariant ii: "once state ≥ cancelled the job is removed from active
// scheduling").
func (s JobState) IsTerminal() bool {
	return s >= jobCancelled
}

// IsActive reports whether the job should still appear in get-jobs (spec §8).
func (s JobState) IsActive() bool {
	return s == jobPending || s == jobHeld || s == jobProcessing
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// DestinationKind distinguishes the five destination flavors of spec §3.
type DestinationKind uint8

const (
	destLocalPrinter DestinationKind = iota
	destLocalClass
	destImplicitClass
	destRemotePrinter
	destRemoteClass
)

var EDestinationKind = DestinationKind(destLocalPrinter)

func (DestinationKind) LocalPrinter() DestinationKind   { return destLocalPrinter }
func (DestinationKind) LocalClass() DestinationKind     { return destLocalClass }
func (DestinationKind) ImplicitClass() DestinationKind  { return destImplicitClass }
func (DestinationKind) RemotePrinter() DestinationKind  { return destRemotePrinter }
func (DestinationKind) RemoteClass() DestinationKind    { return destRemoteClass }

func (k *DestinationKind) Parse(s string) error {
	val, err := enum.ParseInt(reflect.TypeOf(k), s, true, true)
	if err == nil {
		*k = val.(DestinationKind)
	}
	return err
}

func (k DestinationKind) String() string {
	return enum.StringInt(k, reflect.TypeOf(k))
}

func (k DestinationKind) IsClass() bool {
	return k == destLocalClass || k == destImplicitClass || k == destRemoteClass
}

func (k DestinationKind) IsRemote() bool {
	return k == destRemotePrinter || k == destRemoteClass
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// DestinationState is the operator-visible state of a printer or class.
type DestinationState uint8

const (
	destIdle DestinationState = iota
	destProcessing
	destStopped
)

var EDestinationState = DestinationState(destIdle)

func (DestinationState) Idle() DestinationState       { return destIdle }
func (DestinationState) Processing() DestinationState { return destProcessing }
func (DestinationState) Stopped() DestinationState    { return destStopped }

func (s *DestinationState) Parse(str string) error {
	val, err := enum.ParseInt(reflect.TypeOf(s), str, true, true)
	if err == nil {
		*s = val.(DestinationState)
	}
	return err
}

func (s DestinationState) String() string {
	return enum.StringInt(s, reflect.TypeOf(s))
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// HoldUntilKeyword is the set of named windows spec §4.4 allows in
// job-hold-until, in addition to an absolute HH:MM[:SS] time.
type HoldUntilKeyword uint8

const (
	holdNone HoldUntilKeyword = iota
	holdNoHold
	holdIndefinite
	holdDayTime
	holdNight
	holdSecondShift
	holdThirdShift
	holdWeekend
	holdAbsoluteTime
)

var EHoldUntil = HoldUntilKeyword(holdNone)

func (HoldUntilKeyword) None() HoldUntilKeyword         { return holdNone }
func (HoldUntilKeyword) NoHold() HoldUntilKeyword       { return holdNoHold }
func (HoldUntilKeyword) Indefinite() HoldUntilKeyword   { return holdIndefinite }
func (HoldUntilKeyword) DayTime() HoldUntilKeyword      { return holdDayTime }
func (HoldUntilKeyword) Night() HoldUntilKeyword        { return holdNight }
func (HoldUntilKeyword) SecondShift() HoldUntilKeyword  { return holdSecondShift }
func (HoldUntilKeyword) ThirdShift() HoldUntilKeyword   { return holdThirdShift }
func (HoldUntilKeyword) Weekend() HoldUntilKeyword      { return holdWeekend }
func (HoldUntilKeyword) AbsoluteTime() HoldUntilKeyword { return holdAbsoluteTime }

func (k *HoldUntilKeyword) Parse(s string) error {
	val, err := enum.ParseInt(reflect.TypeOf(k), s, true, true)
	if err == nil {
		*k = val.(HoldUntilKeyword)
	}
	return err
}

func (k HoldUntilKeyword) String() string {
	return enum.StringInt(k, reflect.TypeOf(k))
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// OrderPolicy is a Location rule's Allow/Deny evaluation order (spec §4.2).
type OrderPolicy uint8

const (
	orderDenyThenAllow OrderPolicy = iota
	orderAllowThenDeny
)

var EOrderPolicy = OrderPolicy(orderDenyThenAllow)

func (OrderPolicy) DenyThenAllow() OrderPolicy { return orderDenyThenAllow }
func (OrderPolicy) AllowThenDeny() OrderPolicy { return orderAllowThenDeny }

func (o OrderPolicy) String() string {
	return enum.StringInt(o, reflect.TypeOf(o))
}

// SatisfyPolicy decides whether host and credential checks are AND'd or OR'd.
type SatisfyPolicy uint8

const (
	satisfyAll SatisfyPolicy = iota
	satisfyAny
)

var ESatisfy = SatisfyPolicy(satisfyAll)

func (SatisfyPolicy) All() SatisfyPolicy { return satisfyAll }
func (SatisfyPolicy) Any() SatisfyPolicy { return satisfyAny }

func (s SatisfyPolicy) String() string {
	return enum.StringInt(s, reflect.TypeOf(s))
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// AuthType is the credential-check type a Location rule may require (spec §4.2).
type AuthType uint8

const (
	authNone AuthType = iota
	authBasic
	authDigest
	authBasicDigest
	authNegotiate
)

var EAuthType = AuthType(authNone)

func (AuthType) None() AuthType         { return authNone }
func (AuthType) Basic() AuthType        { return authBasic }
func (AuthType) Digest() AuthType       { return authDigest }
func (AuthType) BasicDigest() AuthType  { return authBasicDigest }
func (AuthType) Negotiate() AuthType    { return authNegotiate }

func (a *AuthType) Parse(s string) error {
	val, err := enum.ParseInt(reflect.TypeOf(a), s, true, true)
	if err == nil {
		*a = val.(AuthType)
	}
	return err
}

func (a AuthType) String() string {
	return enum.StringInt(a, reflect.TypeOf(a))
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// ErrorKind enumerates the error taxonomy of spec §7. It is not an error
// number or an exception type, just a classification that the dispatcher
// maps onto a response status.
type ErrorKind uint8

const (
	errNone ErrorKind = iota
	errBadRequest
	errForbidden
	errUnauthorized
	errUpgradeRequired
	errNotFound
	errNotAccepting
	errNotPossible
	errAttributesOrValuesNotSupported
	errDocumentFormatNotSupported
	errInternal
)

var EErrorKind = ErrorKind(errNone)

func (ErrorKind) None() ErrorKind                             { return errNone }
func (ErrorKind) BadRequest() ErrorKind                       { return errBadRequest }
func (ErrorKind) Forbidden() ErrorKind                        { return errForbidden }
func (ErrorKind) Unauthorized() ErrorKind                     { return errUnauthorized }
func (ErrorKind) UpgradeRequired() ErrorKind                  { return errUpgradeRequired }
func (ErrorKind) NotFound() ErrorKind                         { return errNotFound }
func (ErrorKind) NotAccepting() ErrorKind                     { return errNotAccepting }
func (ErrorKind) NotPossible() ErrorKind                      { return errNotPossible }
func (ErrorKind) AttributesOrValuesNotSupported() ErrorKind   { return errAttributesOrValuesNotSupported }
func (ErrorKind) DocumentFormatNotSupported() ErrorKind       { return errDocumentFormatNotSupported }
func (ErrorKind) Internal() ErrorKind                         { return errInternal }

func (e ErrorKind) String() string {
	return enum.StringInt(e, reflect.TypeOf(e))
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////////////

// OperationCode names every request the dispatcher (spec §4.7) routes to a
// handler. PrintJob through MoveJob are the job/destination operations;
// the dispatcher treats none of them as "private" except where noted on
// the handler table itself.
type OperationCode uint16

const (
	opPrintJob OperationCode = iota
	opValidateJob
	opCreateJob
	opSendDocument
	opCancelJob
	opGetJobAttributes
	opGetJobs
	opGetPrinterAttributes
	opHoldJob
	opReleaseJob
	opRestartJob
	opPausePrinter
	opResumePrinter
	opPurgeJobs
	opSetJobAttributes
	opGetDefault
	opGetPrinters
	opGetClasses
	opAddPrinter
	opDeletePrinter
	opAddClass
	opDeleteClass
	opAcceptJobs
	opRejectJobs
	opSetDefault
	opGetDevices
	opGetPPDs
	opMoveJob
)

var EOperation = OperationCode(opPrintJob)

func (OperationCode) PrintJob() OperationCode             { return opPrintJob }
func (OperationCode) ValidateJob() OperationCode          { return opValidateJob }
func (OperationCode) CreateJob() OperationCode            { return opCreateJob }
func (OperationCode) SendDocument() OperationCode         { return opSendDocument }
func (OperationCode) CancelJob() OperationCode            { return opCancelJob }
func (OperationCode) GetJobAttributes() OperationCode     { return opGetJobAttributes }
func (OperationCode) GetJobs() OperationCode               { return opGetJobs }
func (OperationCode) GetPrinterAttributes() OperationCode { return opGetPrinterAttributes }
func (OperationCode) HoldJob() OperationCode              { return opHoldJob }
func (OperationCode) ReleaseJob() OperationCode           { return opReleaseJob }
func (OperationCode) RestartJob() OperationCode           { return opRestartJob }
func (OperationCode) PausePrinter() OperationCode         { return opPausePrinter }
func (OperationCode) ResumePrinter() OperationCode        { return opResumePrinter }
func (OperationCode) PurgeJobs() OperationCode            { return opPurgeJobs }
func (OperationCode) SetJobAttributes() OperationCode     { return opSetJobAttributes }
func (OperationCode) GetDefault() OperationCode           { return opGetDefault }
func (OperationCode) GetPrinters() OperationCode          { return opGetPrinters }
func (OperationCode) GetClasses() OperationCode           { return opGetClasses }
func (OperationCode) AddPrinter() OperationCode           { return opAddPrinter }
func (OperationCode) DeletePrinter() OperationCode        { return opDeletePrinter }
func (OperationCode) AddClass() OperationCode             { return opAddClass }
func (OperationCode) DeleteClass() OperationCode          { return opDeleteClass }
func (OperationCode) AcceptJobs() OperationCode           { return opAcceptJobs }
func (OperationCode) RejectJobs() OperationCode           { return opRejectJobs }
func (OperationCode) SetDefault() OperationCode           { return opSetDefault }
func (OperationCode) GetDevices() OperationCode           { return opGetDevices }
func (OperationCode) GetPPDs() OperationCode              { return opGetPPDs }
func (OperationCode) MoveJob() OperationCode              { return opMoveJob }

func (o OperationCode) String() string {
	return enum.StringInt(o, reflect.TypeOf(o))
}
