package daemon

const exePlaceholder = "/path/to/kcal"

// UnitTemplate is the systemd service running the daemon.
const UnitTemplate = `[Unit]
Description=kcal display calibration daemon
After=multi-user.target

[Service]
Type=simple
ExecStart=/path/to/kcal daemon
ExecReload=/bin/kill -HUP $MAINPID
Restart=on-failure

[Install]
WantedBy=multi-user.target
`

// SleepHookTemplate is the systemd-sleep hook that re-applies the
// calibration when the system wakes up.
const SleepHookTemplate = `#!/bin/sh
# Installed by kcal. Re-applies display calibration after resume.
case "$1" in
post)
	/path/to/kcal resume || true
	;;
esac
`
