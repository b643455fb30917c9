package shapes

// Version is the release of the module, printed by the shapes command.
var Version = "0.1.0"
