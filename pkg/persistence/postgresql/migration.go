package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflow_rules (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				from_status VARCHAR(50) NOT NULL,
				to_status VARCHAR(50) NOT NULL,
				actions JSONB NOT NULL DEFAULT '[]',
				is_active BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflow_rules_is_active ON workflow_rules(is_active);
			CREATE INDEX idx_workflow_rules_to_status ON workflow_rules(to_status);
			CREATE INDEX idx_workflow_rules_created_at ON workflow_rules(created_at);
		`,
		2: `
			CREATE TABLE execution_records (
				id UUID PRIMARY KEY,
				rule_id VARCHAR(255) NOT NULL,
				deal_id VARCHAR(255) NOT NULL,
				action_index INT NOT NULL,
				action_kind VARCHAR(50) NOT NULL,
				outcome VARCHAR(20) NOT NULL CHECK (outcome IN ('success', 'failed')),
				failure_reason TEXT NOT NULL DEFAULT '',
				executed_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_execution_records_deal_id ON execution_records(deal_id);
			CREATE INDEX idx_execution_records_rule_id ON execution_records(rule_id);
			CREATE INDEX idx_execution_records_executed_at ON execution_records(executed_at);
		`,
	}
}
