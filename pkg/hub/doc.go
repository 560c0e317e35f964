// Package hub is the client SDK for an Atria hub: one facade over the
// identity provider, the REST backend and the lakeFS storage layer.
//
// Construction is two-phase. New wires the clients without touching the
// network; Initialize then checks the backend, signs in if needed, obtains
// storage credentials and hands them to the storage client:
//
//	h, err := hub.New(hub.LoadConfig(), hub.WithCredentialSource(hub.CredentialsFromEnv()))
//	if err != nil {
//		return err
//	}
//	defer h.Close()
//
//	ready, err := h.Initialize(ctx, hub.InitializeInput{})
//	if err != nil {
//		return err
//	}
//
//	ds, err := h.Datasets().GetOrCreate(ctx, hub.CreateDatasetInput{Name: "invoices"})
//
// Sessions are never cached by the hub. Every authenticated request and
// every User call reads the identity client's stored session, refreshing it
// when it is about to expire.
package hub
