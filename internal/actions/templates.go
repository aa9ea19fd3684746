// Package actions holds the catalogue of ready-made shell actions and runs
// batches of them through the control engine.
package actions

import "github.com/deixis/procbridge/internal/platform"

// Action is a named shell command the user can enable, disable and run.
type Action struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Command     string `json:"command" yaml:"command"`
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Custom      bool   `json:"custom,omitempty" yaml:"custom,omitempty"`
}

// Category groups templates for display.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Categories in display order.
var Categories = []Category{
	{ID: "system", Name: "System Actions"},
	{ID: "apps", Name: "Application Control"},
	{ID: "web", Name: "Web & Network"},
	{ID: "media", Name: "Media & Notifications"},
	{ID: "custom", Name: "Custom Commands"},
}

// pick chooses the command text for kind. Unsupported hosts get the Linux text.
func pick(kind platform.Kind, windows, macos, linux string) string {
	switch kind {
	case platform.Windows:
		return windows
	case platform.MacOS:
		return macos
	default:
		return linux
	}
}

// Templates returns the built-in actions for kind, keyed by category ID.
// Every category is present; "custom" is always empty.
func Templates(kind platform.Kind) map[string][]Action {
	openURL := func(url string) string {
		return pick(kind, `start "" "`+url+`"`, "open "+url, "xdg-open "+url)
	}

	return map[string][]Action{
		"system": {
			{
				ID:          "sleep",
				Name:        "Sleep Computer",
				Command:     pick(kind, "rundll32.exe powrprof.dll,SetSuspendState 0,1,0", "pmset sleepnow", "systemctl suspend"),
				Enabled:     true,
				Description: "Put the computer to sleep",
			},
			{
				ID:          "shutdown",
				Name:        "Shutdown Computer",
				Command:     pick(kind, "shutdown /s /t 60", "sudo shutdown -h +1", "sudo shutdown -h +1"),
				Description: "Shutdown the computer in 1 minute",
			},
			{
				ID:   "lock",
				Name: "Lock Screen",
				Command: pick(kind,
					"rundll32.exe user32.dll,LockWorkStation",
					`/System/Library/CoreServices/Menu\ Extras/User.menu/Contents/Resources/CGSession -suspend`,
					"loginctl lock-session"),
				Enabled:     true,
				Description: "Lock the screen",
			},
		},
		"apps": {
			{
				ID:   "kill-browser",
				Name: "Close All Browsers",
				Command: pick(kind,
					"taskkill /F /IM chrome.exe /IM firefox.exe /IM msedge.exe",
					`killall "Google Chrome" "Firefox" "Safari"`,
					"killall chrome firefox"),
				Description: "Force close all browser applications",
			},
			{
				ID:          "start-browser",
				Name:        "Start Default Browser",
				Command:     openURL("https://www.google.com"),
				Enabled:     true,
				Description: "Open the default browser to Google",
			},
			{
				ID:   "start-music",
				Name: "Start Music Player",
				Command: pick(kind,
					`start "" "spotify:user:spotify:playlist:37i9dQZF1DXcBWIGoYBM5M"`,
					"open -a Spotify",
					"spotify"),
				Description: "Open Spotify or default music player",
			},
		},
		"web": {
			{
				ID:          "open-youtube",
				Name:        "Open YouTube",
				Command:     openURL("https://www.youtube.com"),
				Enabled:     true,
				Description: "Open YouTube in the default browser",
			},
			{
				ID:          "open-gmail",
				Name:        "Open Gmail",
				Command:     openURL("https://mail.google.com"),
				Description: "Open Gmail in the default browser",
			},
		},
		"media": {
			{
				ID:   "play-sound",
				Name: "Play Completion Sound",
				Command: pick(kind,
					`powershell -c (New-Object Media.SoundPlayer "C:\Windows\Media\chimes.wav").PlaySync()`,
					"afplay /System/Library/Sounds/Glass.aiff",
					"paplay /usr/share/sounds/freedesktop/stereo/complete.oga"),
				Enabled:     true,
				Description: "Play a sound when timer completes",
			},
			{
				ID:   "notification",
				Name: "Show Notification",
				Command: pick(kind,
					`powershell -command "& {[System.Reflection.Assembly]::LoadWithPartialName('System.Windows.Forms'); [System.Windows.Forms.MessageBox]::Show('Timer completed!', 'Timer')}"`,
					`osascript -e 'display notification "Timer completed!" with title "Timer"'`,
					`notify-send "Timer" "Timer completed!"`),
				Enabled:     true,
				Description: "Show a system notification",
			},
		},
		"custom": {},
	}
}

// All returns every template for kind, in category order, with Category set.
func All(kind platform.Kind) []Action {
	byCat := Templates(kind)
	var out []Action
	for _, c := range Categories {
		for _, a := range byCat[c.ID] {
			a.Category = c.ID
			out = append(out, a)
		}
	}
	return out
}

// ByID returns the template with id, if any.
func ByID(kind platform.Kind, id string) (Action, bool) {
	for _, a := range All(kind) {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// InCategory returns the templates of one category, with Category set.
func InCategory(kind platform.Kind, category string) []Action {
	var out []Action
	for _, a := range All(kind) {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}
