// Package testutil holds shared fixtures and an in-memory NATS double for
// tests.
//
// MockNATSClient satisfies the publish/subscribe surface the decode processor
// needs from natsclient.Client. Messages are delivered synchronously, so a
// test can publish a raw payload and immediately inspect what the processor
// emitted:
//
//	nc := testutil.NewMockNATSClient()
//	proc, _ := decoder.NewProcessor(raw, component.Dependencies{NATSClient: nc})
//	_ = proc.(component.LifecycleComponent).Initialize()
//	_ = proc.(component.LifecycleComponent).Start(ctx)
//	_ = nc.Publish(ctx, "logs.raw", []byte("hello"))
//	out := nc.GetMessages("logs.decoded")
//
// FailPublish injects publish errors per subject.
//
// The payload fixtures (TestLogLines, TestJSONDocuments, TestBinaryData and
// friends) cover the shapes decoder tests care about: text, JSON, arrays,
// bytes that are not UTF-8 and malformed documents.
package testutil
