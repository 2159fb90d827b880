// Package migrate moves manifests forward across schema-version
// boundaries. Transforms are registered per ordered version pair; a
// breadth-first path finder chains them to bridge non-adjacent versions,
// always preferring an explicitly registered direct transform over a
// derived chain. Intermediate results are re-validated at every hop and
// the whole migration aborts on the first failure.
package migrate
