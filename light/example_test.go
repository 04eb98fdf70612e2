package light_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/creachadair/lightsync/light"
)

func ExampleMachine() {
	m := light.New(&light.Config{
		MinDwell: 10 * time.Millisecond,
		MaxDwell: 20 * time.Millisecond,
	})
	fmt.Println("initial:", m.Phase())

	// Start the light cycling, and stop it when done.
	m.Simulate()
	defer m.Stop()

	// A vehicle waits at the light until it turns green.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.WaitForGreen(ctx); err != nil {
		log.Fatalf("WaitForGreen: %v", err)
	}
	fmt.Println("vehicle may proceed")
	// Output:
	// initial: red
	// vehicle may proceed
}
