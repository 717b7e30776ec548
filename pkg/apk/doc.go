// Package apk reads Alpine package archives and repository indexes.
//
// # Archives
//
// An .apk file is a sequence of gzip-compressed tar segments (signature,
// control, data) concatenated into one file. Decompressed as a single
// multistream they form one continuous tar stream, which is how this package
// reads them. The control segment carries the metadata member `.PKGINFO`:
//
//	pkgname = busybox
//	pkgver = 1.36.1-r29
//	depend = so:libc.musl-x86_64.so.1
//
// [ExtractDependencies] returns the `depend = ` values in file order;
// [ReadPackageInfo] returns the whole record. An archive without `.PKGINFO`
// has no dependencies; an archive that cannot be decompressed or untarred
// fails with an [ArchiveReadError].
//
// # Indexes
//
// A repository publishes APKINDEX.tar.gz whose `APKINDEX` member lists one
// block per package:
//
//	P:busybox
//	V:1.36.1-r29
//	D:so:libc.musl-x86_64.so.1
//
// [ParseIndex] builds an [Index] mapping each short name to its archive
// filename (`busybox-1.36.1-r29.apk`).
//
// # Names
//
// Dependencies and traversal keys use the short name. [CanonicalName] reduces
// any identifier (short name, archive filename, or a dependency token with
// trailing text) to that form.
package apk
