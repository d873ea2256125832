package cashtxn

// Counterparty roles recorded on a transaction.
const (
	CounterpartyCustomer = "CUSTOMER"
	CounterpartyVendor   = "VENDOR"
	CounterpartyEmployee = "EMPLOYEE"
	CounterpartyOther    = "OTHER"
)

// Source modules that create cash transactions.
const (
	SourceModuleCari    = "CARI"
	SourceModulePayroll = "PAYROLL"
	SourceModuleBank    = "BANK"
)

// Source entity types used with SourceModuleCari.
const (
	SourceEntitySettlementBatch = "SETTLEMENT_BATCH"
)
