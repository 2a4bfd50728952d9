// Package telemetry streams live vehicle state from a vehicle server to the
// app over WebSocket, and finds vehicle servers on the local network over mDNS.
//
// # Server
//
// Server wraps a vehicle.Simulator. Every Config.Interval it steps the
// simulator by the same amount of simulated time and pushes a Frame to each
// subscriber:
//
//	GET /telemetry   WebSocket, one JSON Frame per interval
//	GET /snapshot    current vehicle.State as JSON
//	GET /healthz     Health as JSON
//
// A new subscriber receives the current state immediately. Each subscriber
// has a small send queue; a slow subscriber misses frames rather than
// holding up the others. Subscribers are identified by a random UUID in logs.
//
//	sim := vehicle.NewSimulator(vehicle.DefaultState())
//	srv, err := telemetry.New(&telemetry.Config{Port: telemetry.DefaultPort, Advertise: true}, sim)
//	if err != nil {
//	    return err
//	}
//	return srv.Start() // blocks until SIGINT/SIGTERM
//
// # Discovery
//
// With Config.Advertise the server registers an "_evlease._tcp" service with
// TXT records:
//
//	model=Model 3 Long Range
//	name=Midnight
//	path=/telemetry
//	version=1.0.0
//
// Scanner browses for that service type and returns Endpoints; Endpoint.URL
// gives the WebSocket URL to pass to Subscribe.
//
// # Client
//
// Subscribe dials a telemetry URL and returns a channel of states, closed when
// the context ends or the server goes away. Resolve chooses between the
// configured URL and discovery.
package telemetry
