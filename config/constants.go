package config

const (
	GENESIS_SLOT  = 0
	GENESIS_EPOCH = 0

	BLS_PUBKEY_LENGTH    = 48
	BLS_SIGNATURE_LENGTH = 96

	// Generalized indices into the beacon state, before Electra.
	FINALIZED_ROOT_GINDEX         = 105
	CURRENT_SYNC_COMMITTEE_GINDEX = 54
	NEXT_SYNC_COMMITTEE_GINDEX    = 55

	// Generalized indices into the beacon state, Electra and later.
	FINALIZED_ROOT_GINDEX_ELECTRA         = 169
	CURRENT_SYNC_COMMITTEE_GINDEX_ELECTRA = 86
	NEXT_SYNC_COMMITTEE_GINDEX_ELECTRA    = 87

	// Generalized index of the execution payload inside the beacon block body.
	EXECUTION_PAYLOAD_GINDEX = 25

	BYTES_PER_LOGS_BLOOM = 256
	MAX_EXTRA_DATA_BYTES = 32
)

// DOMAIN_SYNC_COMMITTEE is the signature domain type of sync committee messages.
var DOMAIN_SYNC_COMMITTEE = [4]byte{0x07, 0x00, 0x00, 0x00}
