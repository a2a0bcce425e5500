package notifier

import (
	"fmt"

	"pushnotify/internal/types"
)

// Compose renders the notification text:
//
//	{type}: {functionName}
//	operation: {operation}
//	authentication: {principal}
//	{dateTime}
//
// Each line, including the last, ends with a newline.
func Compose(n *types.Notification) string {
	return fmt.Sprintf("%s: %s\noperation: %s\nauthentication: %s\n%s\n",
		n.Type,
		n.FunctionName,
		n.Operation,
		n.Principal,
		n.Timestamp.String(),
	)
}
