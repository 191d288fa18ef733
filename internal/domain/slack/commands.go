package slack

import (
	"fmt"
	"strings"
)

type CommandType string

const (
	CmdOn     CommandType = "on"
	CmdOff    CommandType = "off"
	CmdRun    CommandType = "run"
	CmdStatus CommandType = "status"
	CmdHelp   CommandType = "help"
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

func ParseCommand(text string) (*Command, error) {
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) == 0 {
		return &Command{Type: CmdHelp}, nil
	}

	cmd := &Command{
		Raw: text,
	}
	if len(parts) > 1 {
		cmd.Args = parts[1:]
	}

	switch strings.ToLower(parts[0]) {
	case "on", "enable", "subscribe":
		cmd.Type = CmdOn
	case "off", "disable", "unsubscribe":
		cmd.Type = CmdOff
	case "run", "resync", "refresh":
		cmd.Type = CmdRun
	case "status", "info":
		cmd.Type = CmdStatus
	case "help":
		cmd.Type = CmdHelp
	default:
		return nil, fmt.Errorf("unknown command: %s", parts[0])
	}

	return cmd, nil
}

func GetHelpText() string {
	return `*Available Commands:*

*Notifications:*
• ` + "`/devotional on`" + ` - Turn devotional notifications on and schedule the next two weeks
• ` + "`/devotional off`" + ` - Turn notifications off and cancel everything already scheduled
• ` + "`/devotional run`" + ` - Rebuild the schedule now from the latest published content

*Information:*
• ` + "`/devotional status`" + ` - Show opt-in, subscription, rotation position and pending notifications
• ` + "`/devotional help`" + ` - Show this message

*Notes:*
• Notifications are never scheduled during quiet hours
• Snippets rotate through the latest week's content and continue where the last schedule stopped`
}
