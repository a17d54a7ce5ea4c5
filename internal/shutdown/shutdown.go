package shutdown

import (
	"os"
	"os/signal"
	"syscall"
)

// WaitForExitSignal は終了シグナルを受け取るまでブロックし、受け取ったシグナルを返す
func WaitForExitSignal() os.Signal {
	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChannel)
	return <-signalChannel
}
