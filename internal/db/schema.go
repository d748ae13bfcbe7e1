package db

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- NODE TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS node SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS name ON node TYPE string;
    DEFINE FIELD IF NOT EXISTS content ON node TYPE string;
    DEFINE FIELD IF NOT EXISTS type ON node TYPE string DEFAULT 'Fact';
    DEFINE FIELD IF NOT EXISTS source ON node TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS embedding ON node TYPE option<array<float>>;
    DEFINE FIELD IF NOT EXISTS created_at ON node TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated_at ON node TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS node_type ON node FIELDS type;
    DEFINE INDEX IF NOT EXISTS node_embedding ON node FIELDS embedding HNSW DIMENSION 384 DIST COSINE TYPE F32;
    DEFINE ANALYZER IF NOT EXISTS node_analyzer TOKENIZERS class FILTERS lowercase, ascii, snowball(english);
    DEFINE INDEX IF NOT EXISTS node_content_ft ON node FIELDS content FULLTEXT ANALYZER node_analyzer BM25;
    DEFINE INDEX IF NOT EXISTS node_name_ft ON node FIELDS name FULLTEXT ANALYZER node_analyzer BM25;

    -- ==========================================================================
    -- EDGE TABLE
    -- ==========================================================================
    -- Single relation table with rel_type field; unique constraint keeps
    -- duplicate edges out under concurrent ingestion.
    DEFINE TABLE IF NOT EXISTS edge TYPE RELATION IN node OUT node SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS rel_type ON edge TYPE string;
    DEFINE FIELD IF NOT EXISTS weight ON edge TYPE float DEFAULT 1.0;
    DEFINE FIELD IF NOT EXISTS created_at ON edge TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS unique_key ON edge VALUE <string>string::concat(<string>in, '|', rel_type, '|', <string>out);
    DEFINE INDEX IF NOT EXISTS unique_edge ON edge FIELDS unique_key UNIQUE;

    -- ==========================================================================
    -- JOB TABLE (durable job store backend)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS job SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS job_type ON job TYPE string;
    DEFINE FIELD IF NOT EXISTS state ON job TYPE string DEFAULT 'pending';
    DEFINE FIELD IF NOT EXISTS result ON job TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS error ON job TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created_at ON job TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated_at ON job TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS job_state ON job FIELDS state;
`
