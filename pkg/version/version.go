package version

import (
	"fmt"
	"runtime"

	"github.com/bytedance/sonic"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/6 20:15
 * @file: version.go
 * @description: build information, injected via -ldflags
 */

var (
	Version   = ""
	GitBranch = ""
	GitCommit = ""
	BuildTime = ""
)

type Info struct {
	Version   string `json:"version"`
	GitBranch string `json:"gitBranch"`
	GitCommit string `json:"gitCommit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	Compiler  string `json:"compiler"`
	Platform  string `json:"platform"`
}

func GetVersion() *Info {
	return &Info{
		Version:   Version,
		GitBranch: GitBranch,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Compiler:  runtime.Compiler,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (v *Info) String() string {
	j, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("{%q: %q}", "version", v.Version)
	}
	return string(j)
}
