package panel

// DefaultFBDevice is used by the fbdev sink when no device is configured.
const DefaultFBDevice = "/dev/fb0"
