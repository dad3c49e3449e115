package helper

import "fmt"

func PrintHelp() {
	fmt.Print(`Usage:
  feedsweep COMMAND [OPTIONS]

Commands:
   add             add new feed (--name, --url, --cron "*/15 * * * *")
   list            list configured feeds [--num N]
   delete          delete feed (--name)
   articles        show latest articles (--feed-name, --num)
   run             start the background sweeper
   sweep           trigger an immediate sweep on the running sweeper
   logs            show the running sweeper's recent operations [--clear]
   set-interval    set sweep interval (e.g. 1m)
   set-workers     set number of fetch workers
   help            show this help
`)
}
