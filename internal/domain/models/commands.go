package models

import "strings"

// CommandType enumerates the operations farm staff can trigger over WhatsApp.
type CommandType string

const (
	CommandHarvest  CommandType = "harvest"
	CommandSow      CommandType = "sow"
	CommandPlan     CommandType = "plan"
	CommandStock    CommandType = "stock"
	CommandPickList CommandType = "picklist"
	CommandHelp     CommandType = "help"
	CommandUnknown  CommandType = "unknown"
)

// Command is a parsed staff instruction. Args keep their original case because
// variety names are case-sensitive.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form message text such as "/harvest Sunflower=5".
func ParseCommand(message string) Command {
	tokens := strings.Fields(strings.TrimSpace(message))
	cmd := Command{Type: CommandUnknown, Raw: message}
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	switch CommandType(head) {
	case CommandHarvest, CommandSow, CommandPlan, CommandStock, CommandPickList, CommandHelp:
		cmd.Type = CommandType(head)
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}
	return cmd
}
