// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

//go:build unix

package pluginffi

/*
#include <stdint.h>
#include <stdlib.h>
#include <string.h>

typedef struct CDFatStr {
	const char *ptr;
	size_t len;
} CDFatStr;

typedef struct CCloudFile {
	CDFatStr full_path;
	CDFatStr relative_path;
	CDFatStr output_path;
} CCloudFile;

// kind: 0=Pass 1=Ignore 2=Index 3=Dynamic 4=SingleThorn 5=MultiThorn, mirroring
// densky.ResolutionKind's wire discriminants (spec §6).
typedef struct CResolution {
	uint8_t kind;
	CDFatStr prefix;
	CDFatStr var;
	CDFatStr suffix;
	CDFatStr name;
	uint8_t ok;
	CDFatStr error;
} CResolution;

typedef struct CSetup {
	CDFatStr name;
	CDFatStr version;
	CDFatStr source_folder;
	uint8_t has_file_starts;
	CDFatStr file_starts;
	uint8_t has_file_ends;
	CDFatStr file_ends;
	uint8_t file_strategy;
	uint8_t ok;
	CDFatStr error;
} CSetup;

typedef struct CManifestUpdate {
	CDFatStr imports_json;
	CDFatStr arguments_json;
	CDFatStr content;
	uint8_t ok;
	CDFatStr error;
} CManifestUpdate;

typedef void* (*cloud_context_fn)(void);
typedef void (*cloud_debug_context_fn)(void*);
typedef void (*cloud_post_setup_fn)(void*);
typedef CSetup (*cloud_setup_fn)(void);
typedef CResolution (*cloud_file_resolve_fn)(CCloudFile, void*);
typedef CManifestUpdate (*cloud_before_manifest_fn)(void);
typedef CManifestUpdate (*cloud_manifest_fn)(CDFatStr leaf_json, CDFatStr static_children_src, CDFatStr children_src, CDFatStr dynamic_child_src);

static CSetup densky_call_setup(void *fn) {
	return ((cloud_setup_fn)fn)();
}

static void* densky_call_context(void *fn) {
	return ((cloud_context_fn)fn)();
}

static void densky_call_debug_context(void *fn, void *ctx) {
	((cloud_debug_context_fn)fn)(ctx);
}

static void densky_call_post_setup(void *fn, void *ctx) {
	((cloud_post_setup_fn)fn)(ctx);
}

static CResolution densky_call_file_resolve(void *fn, CCloudFile file, void *ctx) {
	return ((cloud_file_resolve_fn)fn)(file, ctx);
}

static CManifestUpdate densky_call_before_manifest(void *fn) {
	return ((cloud_before_manifest_fn)fn)();
}

static CManifestUpdate densky_call_manifest(void *fn, CDFatStr leaf_json, CDFatStr static_children_src, CDFatStr children_src, CDFatStr dynamic_child_src) {
	return ((cloud_manifest_fn)fn)(leaf_json, static_children_src, children_src, dynamic_child_src);
}
*/
import "C"

import "unsafe"

// fatStr builds a CDFatStr pointing at s's bytes. The returned value is only valid for
// the duration of the call it is passed into — Go strings are not pinned beyond that.
func fatStr(s string) C.CDFatStr {
	if len(s) == 0 {
		return C.CDFatStr{ptr: nil, len: 0}
	}
	return C.CDFatStr{
		ptr: (*C.char)(unsafe.Pointer(unsafe.StringData(s))),
		len: C.size_t(len(s)),
	}
}

func goStr(s C.CDFatStr) string {
	if s.ptr == nil || s.len == 0 {
		return ""
	}
	return C.GoStringN(s.ptr, C.int(s.len))
}
