package version

// Version wird beim Build per -ldflags "-X github.com/fastseq/fastseq/version.Version=..." gesetzt
var Version string = "0.0.0"
