package quoteclient

import "stocks/internal/stock"

const (
	MsgNoInternet = "No internet connection!"
	MsgBadJSON    = "Something went wrong with JSON..."
	MsgNetwork    = "Network error!"
)

// Message phrases a failure for the warning prompt. The reachability answer
// only changes the wording, never whether the failure is reported.
func Message(kind stock.ErrorKind, err error, reachable bool) string {
	if !reachable {
		return MsgNoInternet
	}
	var base string
	switch kind {
	case stock.DecodeError:
		base = MsgBadJSON
	default:
		base = MsgNetwork
	}
	if err == nil {
		return base
	}
	return base + " " + err.Error()
}
