package app_info

// NAME the name of this application
const NAME = "portsweep"

// VERSION the current version of this application
const VERSION = "v0.1.0"
