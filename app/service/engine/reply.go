package engine

import (
	"fmt"
	"os"

	"ludo/app/service/conversation"
	"ludo/app/service/queue"
)

func printReply(assistantName string) ReplyFunc {
	return func(_ queue.Message, reply conversation.Reply) {
		fmt.Fprintf(os.Stdout, "%s: %s\n", assistantName, reply.Text)
	}
}
