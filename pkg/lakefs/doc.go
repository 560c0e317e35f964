// Package lakefs is a small client for a lakeFS installation.
//
// Metadata operations (branches, diffs, commits, listings, stats and small
// object reads) use the lakeFS REST API under {url}/api/v1 with HTTP basic
// auth. Bulk transfers go through the S3-compatible gateway served at the
// same URL, addressed path-style with the repository as bucket and
// "{branch}/{path}" as key.
//
// A Client is created without credentials; they are supplied later with
// SetCredentials once the caller has obtained them. Until then every
// operation fails with ErrNotConnected.
//
//	c := lakefs.NewClient("http://localhost:8001", lakefs.WithRegion("stub"))
//	c.SetCredentials(accessKeyID, secretAccessKey)
//
//	if _, err := c.CreateBranch(ctx, "alice-ds1", "dev", "main"); err != nil {
//		return err
//	}
//	if err := c.PutFile(ctx, "alice-ds1", "dev", "local/train.parquet", "default/delta/train/part-0.parquet", ""); err != nil {
//		return err
//	}
//	_, err := c.Commit(ctx, "alice-ds1", "dev", lakefs.CommitInput{Message: "add train split"})
package lakefs
