package sandbox

// seedStatements returns the demo dataset. Regions are spread so row filters
// visibly change result counts, and customers carry an email column for
// column allow-list demos. Control rows (users, grants) are seeded by
// bootstrap through the repositories once the server is reachable.
func seedStatements() []string {
	return []string{
		`INSERT INTO customers (id, name, email, region, tier, created_at) VALUES
			(1, 'Aldgate Systems', 'ops@aldgate.example', 'EMEA', 'enterprise', '2025-01-12 09:30:00'),
			(2, 'Borealis Labs', 'it@borealis.example', 'AMER', 'startup', '2025-02-03 14:05:00'),
			(3, 'Cetus Analytics', 'admin@cetus.example', 'APAC', 'enterprise', '2025-02-19 11:40:00'),
			(4, 'Dunlin Retail', 'tech@dunlin.example', 'EMEA', 'mid-market', '2025-03-07 08:15:00'),
			(5, 'Eastlake Energy', 'noc@eastlake.example', 'AMER', 'enterprise', '2025-03-28 16:50:00'),
			(6, 'Fennel Foods', 'help@fennel.example', 'APAC', 'startup', '2025-04-11 10:20:00'),
			(7, 'Gatehouse Media', 'eng@gatehouse.example', 'EMEA', 'mid-market', '2025-05-02 13:00:00'),
			(8, 'Harrier Logistics', 'dev@harrier.example', 'AMER', 'mid-market', '2025-05-23 09:45:00')`,
		`INSERT INTO orders (id, customer_id, region, status, amount, created_at) VALUES
			(1, 1, 'EMEA', 'shipped', 1250.00, '2025-06-01 10:00:00'),
			(2, 2, 'AMER', 'shipped', 340.50, '2025-06-02 11:30:00'),
			(3, 3, 'APAC', 'pending', 2780.25, '2025-06-03 09:10:00'),
			(4, 1, 'EMEA', 'pending', 460.00, '2025-06-05 15:45:00'),
			(5, 4, 'EMEA', 'cancelled', 89.99, '2025-06-06 12:20:00'),
			(6, 5, 'AMER', 'shipped', 5120.75, '2025-06-08 14:00:00'),
			(7, 6, 'APAC', 'shipped', 230.00, '2025-06-10 08:55:00'),
			(8, 7, 'EMEA', 'pending', 990.10, '2025-06-12 17:30:00'),
			(9, 8, 'AMER', 'shipped', 1475.00, '2025-06-15 10:40:00'),
			(10, 3, 'APAC', 'shipped', 3310.40, '2025-06-18 13:25:00'),
			(11, 4, 'EMEA', 'shipped', 125.00, '2025-06-20 09:05:00'),
			(12, 5, 'AMER', 'pending', 780.60, '2025-06-22 16:10:00')`,
		`INSERT INTO products (id, name, category, price, stock) VALUES
			(1, 'Telemetry Hub', 'hardware', 899.00, 42),
			(2, 'Edge Router X2', 'hardware', 1299.00, 17),
			(3, 'Fleet License (annual)', 'software', 2400.00, 999),
			(4, 'Sensor Pack', 'hardware', 149.50, 210),
			(5, 'Support Plan Gold', 'services', 3600.00, 999),
			(6, 'Analytics Add-on', 'software', 480.00, 999)`,
	}
}
