/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each component keeps a single configuration object stored under the
"_c:<package name>" key. The object is loaded from the genesis file by
InitConfig and read at runtime by Load. Configuration objects serialize
themselves, use CBOR for new ones (see Marshal and Unmarshal helpers).

Not being able to get a configuration value is a critical condition for the
application and there is no recovery path for the client. Application must be
terminated and configured correctly.
*/
package gconf
