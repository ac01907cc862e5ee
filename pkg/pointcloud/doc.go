// Package pointcloud is the public library surface over the octree and S2
// point-cloud stores: building a store (BuildOctree, S2Splitter), opening
// one for reading (Open), and streaming points matching a geometric
// predicate (PointCloud.Query). Everything else — the codecs, node files,
// manifest, and selection engines — is implementation detail under
// internal/.
package pointcloud
