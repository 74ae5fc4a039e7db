// Package cli parses voxlate command-line arguments.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandRecord    Command = "record"
	CommandToggle    Command = "toggle"
	CommandStop      Command = "stop"
	CommandCancel    Command = "cancel"
	CommandStatus    Command = "status"
	CommandTranslate Command = "translate"
	CommandDevices   Command = "devices"
	CommandDoctor    Command = "doctor"
	CommandVersion   Command = "version"
	CommandHelp      Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandRecord:    {},
	CommandToggle:    {},
	CommandStop:      {},
	CommandCancel:    {},
	CommandStatus:    {},
	CommandTranslate: {},
	CommandDevices:   {},
	CommandDoctor:    {},
	CommandVersion:   {},
	CommandHelp:      {},
}

type Parsed struct {
	Command    Command
	ConfigPath string
	Target     string
	ExportDir  string
	Copy       bool
	File       string
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--copy":
			parsed.Copy = true
		case "--config", "--target", "--export":
			i++
			if i >= len(args) || strings.HasPrefix(args[i], "-") {
				return Parsed{}, fmt.Errorf("%s requires a value", arg)
			}
			switch arg {
			case "--config":
				parsed.ConfigPath = args[i]
			case "--target":
				parsed.Target = args[i]
			case "--export":
				parsed.ExportDir = args[i]
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp

			rest := args[i+1:]
			if cmd == CommandTranslate {
				if len(rest) != 1 {
					return Parsed{}, errors.New("translate requires exactly one FILE argument")
				}
				parsed.File = rest[0]
				return parsed, nil
			}
			if len(rest) != 0 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [flags] <command>
  %[1]s [flags] translate FILE

Commands:
  record          Record from the microphone until stopped, then submit when a target is set
  toggle          Start recording, or stop the active recording
  stop            Stop the active recording
  cancel          Cancel the active recording and discard audio
  status          Print the active session state
  translate FILE  Transcribe FILE and translate it into the target language
  devices         List available input devices
  doctor          Run configuration and environment checks
  version         Print version information
  help            Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/voxlate/config.jsonc)
  --target LANG   Target language (overrides target_language)
  --export DIR    Write transcription/translation .txt files to DIR
  --copy          Copy the translation to the clipboard
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
