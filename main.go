package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fulldump/goconfig"

	"github.com/fulldump/snapdb/bootstrap"
	"github.com/fulldump/snapdb/configuration"
)

var banner = `
 _____                      ____________
/  ___|                     |  _  \ ___ \
\ ` + "`" + `--. _ __   __ _ _ __      | | | | |_/ /
 ` + "`" + `--. \ '_ \ / _` + "`" + ` | '_ \     | | | | ___ \
/\__/ / | | | (_| | |_) |    | |/ /| |_/ /
\____/|_| |_|\__,_| .__/     |___/ \____/
                  | |
                  |_|        version ` + bootstrap.VERSION + `
`

func main() {

	c := configuration.Default()
	goconfig.Read(&c)

	if c.Version {
		fmt.Println("Version:", bootstrap.VERSION)
		return
	}

	if c.ShowBanner {
		fmt.Println(banner)
	}

	if c.ShowConfig {
		e := json.NewEncoder(os.Stdout)
		e.SetIndent("", "    ")
		e.Encode(c)
	}

	start, _ := bootstrap.Bootstrap(&c)
	start()
}
