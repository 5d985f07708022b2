// Package table keeps a live, locally cached view of shipment requests in
// sync with the backend.
//
// A Controller owns one RowCache and one SubscriptionManager. It loads the
// initial rows through a Query, listens for change notifications on the
// shipment request change stream, and decides for every signal whether the
// cached RowSet must be re-fetched. Refreshes always replace the RowSet
// wholesale; the cache is never patched in place and never reflects an
// edit the server has not confirmed.
//
// Local edits go through a Dispatcher, which persists them and then hands
// the outcome back to the Controller so that remote and local changes share
// one reconciliation path.
package table
