package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" short:"c" description:"Path to configuration file" default:"config/local.yaml"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// RunCommand starts the agent.
type RunCommand struct {
	NoTray   bool `long:"no-tray" description:"Do not show the system tray icon"`
	NoServer bool `long:"no-server" description:"Do not start the local control server"`

	globals *GlobalFlags
	version string
}

// ReviewCommand prints the time slot grid of one day and optionally
// deletes slots.
type ReviewCommand struct {
	Date      string   `long:"date" description:"Day to review (YYYY-MM-DD), today when empty"`
	Timezone  string   `long:"timezone" description:"IANA timezone overriding review.timezone"`
	Employees []string `long:"employee" description:"Restrict to an employee id (repeatable)"`
	Select    []string `long:"select" description:"Select a time slot id (repeatable)"`
	SelectAll bool     `long:"select-all" description:"Select every loaded time slot"`
	Delete    bool     `long:"delete" description:"Delete the selected time slots"`

	globals *GlobalFlags
	version string
}
