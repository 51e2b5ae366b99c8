// Package visgate provides a Go SDK for the visgate API.
//
// visgate is a vision-AI gateway: a single API in front of image and
// video generation providers (Fal, Replicate, Runway) with a unified
// model catalog, usage reporting, and provider key management. This SDK
// provides a clean, idiomatic Go interface to the gateway.
//
// # Installation
//
// To install the SDK, use go get:
//
//	go get github.com/visgate-ai/visgate-go
//
// # Quick Start
//
// Create a client and generate an image:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    visgate "github.com/visgate-ai/visgate-go"
//	)
//
//	func main() {
//	    // Reads the API key from VISGATE_API_KEY.
//	    client, err := visgate.NewClient()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer client.Close()
//
//	    result, err := client.Generate(context.Background(), &visgate.GenerateRequest{
//	        Prompt: "a sunset over mountains",
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(*result.ImageURL)
//	}
//
// # Client Configuration
//
// The client is configured with functional options:
//
//	client, err := visgate.NewClient(
//	    visgate.WithAPIKey("vg-..."),
//	    visgate.WithTimeout(2*time.Minute),
//	    visgate.WithMaxRetries(3),
//	    visgate.WithFalKey(falKey), // BYOK mode for Fal
//	)
//
// # Retries
//
// Transient failures (HTTP 429/500/502/503/504, network timeouts,
// connection errors) are retried automatically with exponential backoff,
// honoring the server's Retry-After header when present. Permanent
// failures surface immediately as typed errors.
//
// # Error Handling
//
// Every failure is a typed error, matchable with errors.As:
//
//	result, err := client.GenerateImage(ctx, req)
//	if err != nil {
//	    var rateErr *visgate.RateLimitError
//	    var valErr *visgate.ValidationError
//	    switch {
//	    case errors.As(err, &rateErr):
//	        // back off; rateErr.RetryAfter has the server's suggestion
//	    case errors.As(err, &valErr):
//	        // fix the request; valErr.Field names the offending field
//	    }
//	}
//
// All typed errors unwrap to [GatewayError], which carries the
// machine-readable code, HTTP status and structured details.
//
// # Asynchronous Generation
//
// Generation endpoints can run asynchronously. The *Async methods return
// a [GenerationRequest] handle that polls the gateway until the job
// reaches a terminal state:
//
//	handle, err := client.GenerateVideoAsync(ctx, req)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	final, err := handle.Wait(ctx, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if final.IsTerminal() {
//	    fmt.Println(*final.OutputURL)
//	}
//
// By default Wait returns the latest snapshot when its timeout elapses,
// even if the job has not finished; set [WaitOptions.Strict] to turn
// that into a *TimeoutError.
//
// # Thread Safety
//
// The [Client] is safe for concurrent use by multiple goroutines. BYOK
// provider keys set with [Client.SetProviderKeys] are swapped atomically
// and never affect requests already in flight.
//
// # API Version Compatibility
//
// This SDK targets visgate API v1. Use [Client.Health] together with
// [CheckCompatibility] to verify the server version at runtime.
package visgate
