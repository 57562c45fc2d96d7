package core

import "fmt"

const (
	MaintainerLink    = "https://github.com/qa-tooling/testmo-overview/issues"
	BugReportTemplate = "\n\n[NOTE]This is most likely a bug in testmo-overview, please report it at %s"
)

func BugReportMessage() string {
	return fmt.Sprintf(BugReportTemplate, MaintainerLink)
}

const (
	GOOSDarwin  = "darwin"
	GOOSLinux   = "linux"
	GOOSWindows = "windows"
)
