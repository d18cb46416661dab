// Command cart runs the CART decision-tree analysis and works with the models it saves.
//
//	cart run --config cart.yaml
//	cart predict --model cart_final.gob --row 6,148,70,35,0,30,0.62,50
//	cart rules --model cart_final.gob
//	cart export --model cart_final.gob --format sql
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
