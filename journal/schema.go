package journal

// create a table for ledger event records
const recordTableSchema = `
create table if not exists record (
	seq decimal(20,0) primary key,
	id blob(32),
	kind integer,
	account blob(20),
	amount blob,
	reward blob,
	ts decimal(20,0)
);

CREATE INDEX if not exists accountIndex on record(account);
CREATE INDEX if not exists kindIndex on record(kind);
CREATE INDEX if not exists tsIndex on record(ts);
`
