// commands.go: список команд для меню Telegram и его синхронизация.
package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// Commands: команды, которые показываются в меню клиента.
func Commands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "dabs", Description: "Dabs economy: check, daily-roll, level, give, leaderboards, bets"},
		{Command: "ud", Description: "Look up a term in Urban Dictionary"},
		{Command: "help", Description: "Show available commands"},
		{Command: "start", Description: "Say hi"},
	}
}

// CommandDiff: расхождение живого меню с нужным.
type CommandDiff struct {
	Matched    []string
	Mismatched []string
	Missing    []string
	Deprecated []string
}

// Changed: нужно ли перезаливать меню.
func (d CommandDiff) Changed() bool {
	return len(d.Mismatched)+len(d.Missing)+len(d.Deprecated) > 0
}

// DiffCommands сравнивает живое меню (live) с нужным (target) по имени и описанию.
func DiffCommands(live, target []tgbotapi.BotCommand) CommandDiff {
	var diff CommandDiff
	liveByName := make(map[string]string, len(live))
	for _, c := range live {
		liveByName[c.Command] = c.Description
	}

	targetNames := make(map[string]struct{}, len(target))
	for _, c := range target {
		targetNames[c.Command] = struct{}{}
		desc, ok := liveByName[c.Command]
		switch {
		case !ok:
			diff.Missing = append(diff.Missing, c.Command)
		case desc != c.Description:
			diff.Mismatched = append(diff.Mismatched, c.Command)
		default:
			diff.Matched = append(diff.Matched, c.Command)
		}
	}

	for _, c := range live {
		if _, ok := targetNames[c.Command]; !ok {
			diff.Deprecated = append(diff.Deprecated, c.Command)
		}
	}
	return diff
}

// CommandsAPI: часть Bot API, нужная для синхронизации меню.
type CommandsAPI interface {
	GetMyCommands() ([]tgbotapi.BotCommand, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// SyncCommands приводит меню бота к target. Telegram не умеет править команды
// по одной, поэтому при любом расхождении список заменяется целиком.
func SyncCommands(api CommandsAPI, target []tgbotapi.BotCommand) (CommandDiff, error) {
	live, err := api.GetMyCommands()
	if err != nil {
		return CommandDiff{}, fmt.Errorf("ошибка получения команд: %w", err)
	}

	diff := DiffCommands(live, target)
	for _, name := range diff.Matched {
		log.WithField("command", name).Info("Matched")
	}
	for _, name := range diff.Mismatched {
		log.WithField("command", name).Info("Mismatched, patching")
	}
	for _, name := range diff.Missing {
		log.WithField("command", name).Info("Missing, uploading")
	}
	for _, name := range diff.Deprecated {
		log.WithField("command", name).Info("Deprecated, deleting")
	}

	if !diff.Changed() {
		return diff, nil
	}
	if _, err := api.Request(tgbotapi.NewSetMyCommands(target...)); err != nil {
		return diff, fmt.Errorf("ошибка обновления команд: %w", err)
	}
	log.Warn("Меню команд обновлено, клиентам может понадобиться время, чтобы увидеть изменения")
	return diff, nil
}
