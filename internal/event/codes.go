package event

// Code is a system event code. The numeric banding is a contract with
// external log consumers and must not change:
//
//	1000-1999  system states (boot sequence, modes, shutdown)
//	2000-2999  subsystem ready / info
//	4000-4999  recoverable warnings
//	5000-5999  critical faults
type Code uint16

const (
	// System states
	SysBootStart    Code = 1000
	SysBootComplete Code = 1001
	SysReadyIdle    Code = 1002
	SysLoggingOn    Code = 1003
	SysShutdown     Code = 1004

	// Subsystem ready
	ActInitStart   Code = 2000
	ActMotorsReady Code = 2001
	ActServosReady Code = 2002
	ActLogReady    Code = 2003

	// Recoverable warnings
	SafeFailsafeTrigger Code = 4005
	SafeFailsafeClear   Code = 4006

	// Critical faults
	ErrStorageInitFail  Code = 5001
	ErrStorageWriteFail Code = 5002
	ErrI2CBusHang       Code = 5005
	ErrWatchdogReset    Code = 5007
)

// Band returns the name of the code's thousand-band.
func (c Code) Band() string {
	switch {
	case c >= 5000:
		return "critical"
	case c >= 4000:
		return "warning"
	case c >= 2000 && c < 3000:
		return "info"
	case c >= 1000 && c < 2000:
		return "system"
	default:
		return "unknown"
	}
}
